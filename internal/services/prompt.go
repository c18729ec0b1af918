package services

import (
	"fmt"
	"strings"

	"hrflow/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildExtractionPrompt creates the prompt for structuring raw CV text.
func (pb *PromptBuilder) BuildExtractionPrompt(cvText string) string {
	return fmt.Sprintf(`You are a CV parsing system for a recruitment department.

Extract a structured candidate record from the CV text below.

CV TEXT:
%s

Return ONLY a single JSON object with the following structure:
{
  "full_name": "<candidate full name>",
  "email": "<email address or empty string>",
  "phone": "<phone number or empty string>",
  "location": "<location or empty string>",
  "linkedin": "<linkedin url or empty string>",
  "summary": "<professional summary or empty string>",
  "education": [{"institution": "...", "degree": "...", "field_of_study": "...", "start_date": "YYYY-MM or YYYY", "end_date": "YYYY-MM, YYYY or Present"}],
  "experience": [{"company": "...", "position": "...", "start_date": "...", "end_date": "...", "description": "...", "achievements": ["..."]}],
  "skills": [{"name": "...", "category": "Technical|Language|Soft", "proficiency": "..."}],
  "certifications": [{"name": "...", "issuer": "...", "date": "..."}],
  "languages": [{"language": "...", "proficiency": "..."}]
}

- Use empty strings or empty arrays for information that is not present.
- Do NOT invent data that is not in the CV.
- Do NOT wrap the JSON in markdown code fences.`, cvText)
}

// BuildCorrectionPrompt creates the prompt for a targeted repair of a
// structured record that failed validation.
func (pb *PromptBuilder) BuildCorrectionPrompt(cvText string, currentJSON string, defects []models.ValidationDefect) string {
	var defectLines []string
	for _, d := range defects {
		defectLines = append(defectLines, fmt.Sprintf("- %s (%s): %s", d.FieldPath, d.Kind, d.Description))
	}

	return fmt.Sprintf(`You are a CV parsing system. A previous extraction of this CV produced a structured record with validation defects. Produce a corrected, complete record.

ORIGINAL CV TEXT:
%s

CURRENT STRUCTURED RECORD:
%s

VALIDATION DEFECTS TO FIX:
%s

Return ONLY the full corrected JSON object in the same structure as the current record. Return the COMPLETE record, not just the fixed fields.
- Fix every listed defect using information from the original CV text.
- If the CV genuinely does not contain the missing information, leave the field empty rather than inventing data.
- Do NOT wrap the JSON in markdown code fences.`, cvText, currentJSON, strings.Join(defectLines, "\n"))
}

// BuildFeedbackPrompt creates the prompt for personalized rejection
// feedback, grounded in retrieved policy passages when available.
func (pb *PromptBuilder) BuildFeedbackPrompt(cv *models.StructuredCV, stage models.CandidateStage, reason string, ragContext string) string {
	var skills []string
	for _, s := range cv.Skills {
		skills = append(skills, s.Name)
	}

	var experience []string
	for _, e := range cv.Experience {
		experience = append(experience, fmt.Sprintf("%s at %s", e.Position, e.Company))
	}

	if reason == "" {
		reason = "not specified"
	}

	return fmt.Sprintf(`You are an empathetic HR communication assistant writing rejection feedback for a candidate.

CANDIDATE:
- Name: %s
- Skills: %s
- Experience: %s

REJECTION:
- Stage reached: %s
- Reason given by HR: %s

COMPANY POLICY CONTEXT:
%s

Write personalized rejection feedback for this candidate. Requirements:
- Constructive and specific: reference the candidate's actual skills and experience.
- Name concrete areas for improvement relevant to the stage they reached.
- Warm, professional tone; never generic boilerplate.
- Encourage future applications where appropriate.
- Plain text, 3-6 short paragraphs, addressed to the candidate by name.

Return ONLY the feedback text, no JSON, no subject line.`,
		cv.FullName, joinOrNone(skills), joinOrNone(experience), stage, reason, ragContext)
}

// BuildClassificationPrompt creates the prompt for inbound email
// classification over the closed label set.
func (pb *PromptBuilder) BuildClassificationPrompt(sender, subject, body string) string {
	return fmt.Sprintf(`You are an email classification system for a recruitment department.

Classify the incoming email into exactly one of these categories:

1. "candidate_question" - a candidate asking about their application, the recruitment process, interview stages, timelines, or how the company evaluates candidates.
2. "consent_or_iod_request" - anything about personal data, consent to data processing (granting OR withdrawing), GDPR/privacy rights, profiling, automated decisions, or requests for the data protection officer.
3. "general_inquiry" - other recruitment-related mail that a human should read: scheduling, documents, complaints, referrals, anything addressed to a specific person.
4. "other_unclassifiable" - spam, empty mail, or content that fits none of the above.

EMAIL:
From: %s
Subject: %s
Body:
%s

Return ONLY a single JSON object:
{
  "category": "candidate_question" | "consent_or_iod_request" | "general_inquiry" | "other_unclassifiable",
  "confidence": 0.0-1.0,
  "reasoning": "short explanation"
}

- Data-protection and consent content ALWAYS takes priority: if the email mentions consent, personal data, or GDPR at all, classify it as "consent_or_iod_request" even when it also asks a question.
- Do NOT wrap the JSON in markdown code fences.`, sender, subject, body)
}

// BuildAnswerPrompt creates the prompt for composing an auto-reply to
// a candidate question from retrieved knowledge.
func (pb *PromptBuilder) BuildAnswerPrompt(subject, body, ragContext string) string {
	return fmt.Sprintf(`You are an HR assistant answering a candidate's email using the company knowledge base.

CANDIDATE EMAIL:
Subject: %s
Body:
%s

KNOWLEDGE BASE PASSAGES:
%s

Write a reply that:
- Answers the question using ONLY the knowledge base passages above.
- Says plainly when the passages do not cover part of the question, and that HR will follow up.
- Is polite, concise, and signed "HR Team".

Return ONLY the reply text, no JSON, no subject line.`, subject, body, ragContext)
}

// BuildRetrievalQuery formulates the knowledge-base query for a
// rejection event.
func (pb *PromptBuilder) BuildRetrievalQuery(stage models.CandidateStage, reason string) string {
	query := fmt.Sprintf("rejection feedback guidance for candidates rejected at the %s stage", stageLabel(stage))
	if reason != "" {
		query += ": " + reason
	}
	return query
}

func stageLabel(stage models.CandidateStage) string {
	return strings.ReplaceAll(string(stage), "_", " ")
}

// ConsentNotice is the privacy/consent reference appended to every
// feedback artifact.
func (pb *PromptBuilder) ConsentNotice() string {
	return strings.TrimSpace(`
Your personal data is processed for the purpose of this recruitment in line with our privacy policy. Your CV will be retained for the period stated there and then deleted. If you would like to be considered for future openings, reply to this message granting your consent; you may withdraw it at any time. Questions about your data can be addressed to our data protection officer.`)
}

// FormatRAGContext renders retrieved passages for inclusion in a
// prompt.
func FormatRAGContext(passages []models.RetrievedPassage) string {
	if len(passages) == 0 {
		return "No relevant context found."
	}

	var parts []string
	for i, p := range passages {
		parts = append(parts, fmt.Sprintf("--- Context %d (Score: %.2f) ---\n%s",
			i+1, p.Score, strings.TrimSpace(p.Text)))
	}

	return strings.Join(parts, "\n\n")
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none listed"
	}
	return strings.Join(items, ", ")
}

// extractJSON trims markdown fences and surrounding prose from a model
// response that should contain a JSON object or array.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
