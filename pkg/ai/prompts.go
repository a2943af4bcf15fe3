package ai

import (
	"fmt"
	"strings"
)

// AnswerPrompt instructs the model to answer a medical question from the
// retrieved context supplied in the user message.
const AnswerPrompt = `You are a knowledgeable medical assistant designed for educational and informational purposes only.
Your task is to provide clear, factually accurate, and educational answers.

Follow these instructions carefully:
1. Use the provided context primarily to form your answer.
2. If the context does not fully answer the question, provide a brief, logical, and educational explanation using your general medical understanding.
3. Indicate which parts of the provided context were most relevant to your answer.
4. Frame everything as educational information.`

// RecommendationPrompt instructs the model to ground recommendation
// explanations strictly in the combined graph and dataset context.
const RecommendationPrompt = `You are a highly knowledgeable medical assistant. Use ONLY the context below to answer factually.`

// ExplanationPrompt builds the request for a short educational explanation
// of why the given medicines were recommended for the given symptoms.
func ExplanationPrompt(symptoms, drugs []string) string {
	return fmt.Sprintf(`Based on the symptoms: %s

The following medicines were recommended: %s

Provide a brief, educational explanation (2-3 sentences) about why these medicines might be suggested for these symptoms. Focus on general medical principles.

Explanation:`, strings.Join(symptoms, ", "), strings.Join(drugs, ", "))
}
