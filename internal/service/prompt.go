package service

import "fmt"

// translationPrompt asks for bare code in the target language. The source is
// passed through untouched.
func translationPrompt(from, to, source string) string {
	return fmt.Sprintf(`You are a code translation expert. Translate the following %s code to %s. `+
		`Only respond with the translated code, no explanations or markdown:

%s`, from, to, source)
}

// chatPrompt embeds the assistant persona and the caller's constraints
// around the question. The question is not escaped.
func chatPrompt(req ChatRequest) string {
	return fmt.Sprintf(`You are a helpful AI assistant for a code translation website.
This website and chat support were created by %s, who is the %s.
If asked about the team, provide these social media links:
Facebook: %s
LinkedIn: %s

The user's message is: "%s".

Please provide a concise and helpful response in %s, focusing on code correctness.
Keep your response under %d words.`,
		req.Creator, req.Role, req.Facebook, req.LinkedIn, req.Message, req.Language, req.MaxLength)
}
