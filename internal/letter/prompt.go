package letter

import (
	"fmt"
	"strings"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/genai"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/language"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/tone"
)

const notProvided = "Not provided"

const systemPersona = "You are LetterCraft AI, an expert multilingual letter writing assistant. " +
	"Your task is to generate a complete, professional, and contextually appropriate letter based on the user's request. " +
	"You must adhere to the provided structure and tone. " +
	"Do not add any extra notes or explanations outside of the letter content itself. " +
	"The entire output should be only the letter text."

const structureGuide = `You must structure the letter precisely as follows, moving the sender's details to the bottom:
1. Recipient's Information: Recipient's Full Name, Street Address.
2. Salutation: "Dear [Recipient Name]," or a formal alternative.
3. Opening Paragraph: State the purpose of the letter immediately.
4. Body Paragraphs: Provide necessary details and incorporate the user's keywords naturally.
5. Concluding Paragraph: Summarize main points and state any expected action.
6. Complimentary Close: A polite closing like "Sincerely," or "Best regards,".
7. Signature: The sender's printed full name.
8. Sender's Information Block: After the signature, include the sender's full name, street address, and the current date. This block should be at the very end.`

const nativeScriptBlock = `Special Instruction for Indian Languages: The user has selected an Indian language (%[1]s).
The user's input for keywords, names, and addresses may be in English, the selected Indian language, or a mix of both (e.g., Hinglish).
Your task is to understand the user's intent from this input and generate a complete, natural, and culturally appropriate letter written *entirely* in the specified language (%[1]s) and its native script (e.g., Devanagari for Hindi, Bengali script for Bengali).
- If input details are already in the target language, use them directly in the letter.
- If input details are in English, translate the concepts and intent accurately.
- Adhere strictly to the local formal/informal conventions for letter writing.
- Do not transliterate (e.g., do not write Hindi words using English letters). Use the correct native script for the final output.`

const translatorSystem = "You are an expert multilingual translator. " +
	"Your task is to translate the given text accurately into the specified language, preserving the original formatting (including line breaks) and tone. " +
	"Only output the translated text, with no additional comments or explanations."

// BuildLetterPrompt renders the system and user messages for one generation
// request. The output depends only on req.
func BuildLetterPrompt(req models.GenerationRequest) genai.Prompt {
	var sys strings.Builder
	sys.WriteString(systemPersona)
	sys.WriteString("\n\n")
	sys.WriteString(structureGuide)
	if language.NeedsNativeScript(req.Language) {
		sys.WriteString("\n\n")
		fmt.Fprintf(&sys, nativeScriptBlock, req.Language)
	}

	var usr strings.Builder
	usr.WriteString("Please write a letter with the following specifications:\n")
	fmt.Fprintf(&usr, "- Language: %s\n", req.Language)
	fmt.Fprintf(&usr, "- Category: %s\n", req.Category)
	fmt.Fprintf(&usr, "- Tone: %s\n", req.Tone)
	if guide := tone.BuildToneGuide(req.Tone); guide != "" {
		fmt.Fprintf(&usr, "- Tone Guide: %s\n", guide)
	}
	fmt.Fprintf(&usr, "- Desired Length: %s\n", req.Length)
	fmt.Fprintf(&usr, "- Core Subject/Keywords: \"%s\"\n", req.Keywords)
	usr.WriteString("\n---\nSender's Information (to be placed at the bottom of the letter):\n")
	fmt.Fprintf(&usr, "- Full Name: %s\n", orDefault(req.SenderName, notProvided))
	fmt.Fprintf(&usr, "- Street Address: %s\n", orDefault(req.SenderAddress, notProvided))
	usr.WriteString("\n---\nRecipient's Information (to be placed at the top):\n")
	fmt.Fprintf(&usr, "- Full Name: %s\n", orDefault(req.RecipientName, notProvided))
	fmt.Fprintf(&usr, "- Street Address: %s\n", orDefault(req.RecipientAddress, notProvided))
	fmt.Fprintf(&usr, "\n---\nAny other instructions: %s\n\n", orDefault(req.CustomInstructions, "None"))
	usr.WriteString("Generate a complete letter based on these details, following the required structure (sender info at the bottom). ")
	usr.WriteString("If any details are 'Not provided', use realistic placeholders or omit them if appropriate for the letter format.")

	return genai.Prompt{System: sys.String(), User: usr.String()}
}

// BuildTranslationPrompt asks for body to be translated into lang with its
// line breaks kept.
func BuildTranslationPrompt(body, lang string) genai.Prompt {
	return genai.Prompt{
		System: translatorSystem,
		User: fmt.Sprintf("Translate the following letter into %s. Ensure the translation is natural and culturally appropriate. "+
			"Maintain all original line breaks and paragraph structures.\n\n---\n\n%s", lang, body),
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
