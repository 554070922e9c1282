// internal/generation/prompts.go
package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"founder-intake/internal/models"
)

const systemMessage = "You are a helpful assistant."

func startupData(draft models.FormDraft) string {
	raw, _ := json.MarshalIndent(draft, "", "  ")
	return string(raw)
}

func narrativesBatchPrompt(draft models.FormDraft) string {
	return "You are a seasoned venture analyst helping founders craft compelling narratives for their pitch deck.\n\n" +
		"Based on the startup details provided below, write persuasive, professional prose for the following sections:\n" +
		"• Product / Market Fit (pmf) – 1-2 short paragraphs.\n" +
		"• Business Model & Revenue (biz) – 1-2 short paragraphs.\n" +
		"• Industry Vision (vision) – 1-2 short paragraphs.\n\n" +
		`Return ONLY raw JSON with exactly these keys: {"pmf": string, "biz": string, "vision": string}.` + "\n" +
		"Do not wrap the JSON in markdown.\n\n" +
		"STARTUP DATA:\n" + startupData(draft)
}

func narrativesFieldPrompt(draft models.FormDraft, field, guidance string) string {
	return "You are a seasoned venture analyst helping founders craft compelling narratives for their pitch deck.\n\n" +
		fmt.Sprintf("Write the %q section only, as a concise paragraph (max 150 words). Do not return any other text.", field) +
		guidanceSuffix(guidance) + "\n\n" +
		"STARTUP DATA:\n" + startupData(draft)
}

func industryBatchPrompt(draft models.FormDraft) string {
	return `You are a startup analyst helping founders craft the "Industry Fit" section of their pitch.` + "\n\n" +
		"Generate concise, clear prose for each of these keys:\n" +
		"• industryFit – a 1-2 paragraph overview of how the company fits the pet-care / animal-health industry.\n" +
		"• industryFitAlt – an alternative framing (different angle / wording).\n" +
		"• productDescription – a single paragraph describing the product or service.\n\n" +
		`Return ONLY raw JSON with exactly {"industryFit": string, "industryFitAlt": string, "productDescription": string}.` + "\n" +
		"Do not wrap in markdown.\n\n" +
		"STARTUP DATA:\n" + startupData(draft)
}

func industryFieldPrompt(draft models.FormDraft, field, guidance string) string {
	return `You are a startup analyst helping founders craft the "Industry Fit" section of their pitch.` + "\n\n" +
		fmt.Sprintf("Write the %q field only (max 150 words). Return plain text.", field) +
		guidanceSuffix(guidance) + "\n\n" +
		"STARTUP DATA:\n" + startupData(draft)
}

func problemSuggestionsPrompt(tags []string) string {
	return "You are an expert startup mentor in the pet-care space.\n" +
		"Based on the following category tags, suggest three compelling problem statements and three matching strength statements for a founder's pitch.\n" +
		"Tags: " + strings.Join(tags, ", ") + ".\n\n" +
		`Return raw JSON exactly in this shape (no markdown): { "problems": string[], "strengths": string[] } where each array has 3 elements.`
}

func guidanceSuffix(guidance string) string {
	if guidance == "" {
		return ""
	}
	return "\n\nADDITIONAL GUIDANCE FROM FOUNDER:\n" + guidance
}
