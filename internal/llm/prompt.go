package llm

import (
	"fmt"
	"strings"
)

const labelRule = "Extract every label (numeric reference marks such as 1, 2, 3, 4) together with what it designates."

const paragraphRule = "Write a detailed paragraph describing the whole figure and what it represents. " +
	"Mention every label number explicitly in parentheses, e.g. (10), (12), (14), " +
	"and explain how the labelled components are connected to each other."

const exampleBrief = "This diagram depicts a mechanical device."

const exampleDetailed = "The diagram shows a mechanical device consisting of a gear (10), a shaft (12), and a casing (14). " +
	"The gear (10) transfers rotational motion to the shaft (12), which transmits power. " +
	"The casing (14) provides protection and support to the internal mechanisms."

// BuildPrompt returns the extraction instruction. A non-blank figureNo scopes the
// request to the named figure(s); otherwise every diagram in the document is covered.
func BuildPrompt(figureNo string) string {
	figureNo = strings.TrimSpace(figureNo)
	if figureNo != "" {
		return buildFigurePrompt(figureNo)
	}
	return buildAllFiguresPrompt()
}

func buildFigurePrompt(figureNo string) string {
	var b strings.Builder
	b.WriteString("The provided PDF contains diagrams and text. Your task is to:\n")
	fmt.Fprintf(&b, "1. Identify the diagram(s) corresponding to figure number(s) %s and give a brief description of each to confirm the identification.\n", figureNo)
	b.WriteString("2. For each identified diagram:\n")
	b.WriteString("   - " + labelRule + "\n")
	b.WriteString("   - " + paragraphRule + "\n")
	b.WriteString("3. Return a JSON object with exactly two string fields:\n")
	fmt.Fprintf(&b, "   \"brief_description\": one line per figure, starting with \"Figure %s: \", separated by newlines.\n", figureNo)
	fmt.Fprintf(&b, "   \"detailed_description\": one paragraph per figure, starting with \"Figure %s: \", separated by newlines.\n", figureNo)
	b.WriteString("\nExample output:\n")
	b.WriteString(exampleJSON(
		"Figure "+figureNo+": "+exampleBrief,
		"Figure "+figureNo+": "+exampleDetailed,
	))
	return b.String()
}

func buildAllFiguresPrompt() string {
	var b strings.Builder
	b.WriteString("The provided PDF contains diagrams and text. Your task is to:\n")
	b.WriteString("1. Identify all diagrams in the PDF and give a brief description of each to confirm the identification.\n")
	b.WriteString("2. For each diagram:\n")
	b.WriteString("   - " + labelRule + "\n")
	b.WriteString("   - " + paragraphRule + "\n")
	b.WriteString("3. Return a JSON object with exactly two string fields:\n")
	b.WriteString("   \"brief_description\": one line per figure (\"Figure 1: ...\", \"Figure 2: ...\"), separated by newlines.\n")
	b.WriteString("   \"detailed_description\": one paragraph per figure (\"Figure 1: ...\", \"Figure 2: ...\"), separated by newlines.\n")
	b.WriteString("\nExample output:\n")
	b.WriteString(exampleJSON(
		"Figure 1: "+exampleBrief+"\nFigure 2: This diagram illustrates a biomedical apparatus.",
		"Figure 1: "+exampleDetailed+"\nFigure 2: The diagram illustrates a biomedical apparatus with a sensor (20) "+
			"that detects physiological signals, a monitoring unit (22) that processes the data, and a display screen (24). "+
			"The sensor (20) sends data to the monitoring unit (22), which shows the results on the screen (24).",
	))
	return b.String()
}

func exampleJSON(brief, detailed string) string {
	return mustJSON(DiagramDescription{BriefDescription: brief, DetailedDescription: detailed}) + "\n"
}
