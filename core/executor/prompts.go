package executor

import (
	"fmt"
	"strings"

	"github.com/docquery/docquery/model"
)

// BuildPrompt renders the chain-of-thought prompt for a sub-query.
// Each query type gets its own prompt shape; general queries use the search shape.
func BuildPrompt(queryType model.QueryType, text string, contents []string) string {
	switch queryType {
	case model.QueryTypeCounting:
		return countingPrompt(text, contents)
	case model.QueryTypeAnalysis:
		return analysisPrompt(text, contents)
	default:
		return searchPrompt(text, contents)
	}
}

func numberedContext(label string, contents []string) string {
	blocks := make([]string, len(contents))
	for i, content := range contents {
		blocks[i] = fmt.Sprintf("%s %d:\n%s", label, i+1, content)
	}
	return strings.Join(blocks, "\n\n")
}

// countingPrompt forces per-block enumeration with running totals, a complete
// inventory and a cross-check before the final answer. The rigid structure is
// what keeps counts exact on large documents.
func countingPrompt(text string, contents []string) string {
	return fmt.Sprintf(`You are a systematic data analyst. Use step-by-step analysis to ensure 100%% accuracy.

TASK: %s

MANDATORY PROCESS - Follow this exactly:

STEP 1: Process each data block individually and maintain a running count.

Block 1 Analysis:
- Scan every line for relevant items
- List any items found: [list items or state "NONE"]
- Running total after Block 1: [number]

Block 2 Analysis:
- Scan every line for relevant items
- List any items found: [list items or state "NONE"]
- Running total after Block 2: [number]

[Continue this pattern for ALL %d blocks - do not skip any]

STEP 2: Create complete inventory
After processing all blocks, list every item found with block reference:
1. [Item details] (from Block X)
2. [Item details] (from Block Y)
...

STEP 3: Verification and Final Answer
- Count items in your complete list: [number]
- Verify this matches your final running total: [Yes/No]
- If mismatch, recount and correct

FINAL ANSWER (REQUIRED FORMAT):
There are [total number] items matching the question. Here is the complete list:

1. [Item ID/Reference] - [Brief description]
2. [Item ID/Reference] - [Brief description]
...

DATA TO ANALYZE:
%s

IMPORTANT: You must process every single block individually and show your running count after each block. End with the concise FINAL ANSWER format.`,
		text, len(contents), numberedContext("Data Block", contents))
}

func analysisPrompt(text string, contents []string) string {
	return fmt.Sprintf(`You are an expert data analyst. Provide a comprehensive analysis based on the provided data.

ANALYSIS REQUEST: %s

APPROACH:
1. Review all data sections systematically
2. Identify relevant patterns, trends, and insights
3. Provide specific examples and evidence
4. Structure your response clearly with headings and bullet points
5. If specific numbers are requested, count carefully and show your work

DATA FOR ANALYSIS:
%s

RESPONSE FORMAT:
- Use clear headings for different sections of your analysis
- Provide specific evidence from the data
- Include quantitative details where relevant
- Conclude with key insights and recommendations if applicable

Begin your analysis:`,
		text, numberedContext("Data Section", contents))
}

func searchPrompt(text string, contents []string) string {
	return fmt.Sprintf(`You are an information specialist. Find and present relevant information based on the query.

SEARCH QUERY: %s

INSTRUCTIONS:
1. Search through all information blocks for relevant content
2. Extract and present the most pertinent information
3. Organize findings clearly
4. Cite which information blocks contain the relevant details

INFORMATION TO SEARCH:
%s

Please provide a clear, organized response with the relevant information found.`,
		text, numberedContext("Information Block", contents))
}
