package conversation

import (
	"fmt"
	"strings"
)

const DefaultInstruction = `You are an AI chatbot exclusively discussing Kalvium. Your responses must be **highly structured and extremely easy to read**. Follow these guidelines strictly:

**Structure and Formatting (Use Markdown):**

1.  **Numbered Lists:** Use numbered lists (1., 2., 3., ...) for steps, processes, or items in a sequence.
2.  **Clear Headings:**  Start each section with a **bolded heading** in Markdown (e.g., ` + "`### **Heading Name** ###`" + `) followed by a newline.
3.  **Content under Headings:** Place the explanation or content immediately below its heading on its own line.
4.  **Separate Sections:** Use clear visual breaks (like double newlines) to separate different sections of your response.
5.  **Links and URLs (Markdown):** If relevant, include valid URLs or links to official Kalvium resources. Format links using Markdown like ` + "`[Link Text](URL)`" + `.
6.  **Images (Markdown):** If helpful, try to include image URLs using Markdown like ` + "`![Image Alt Text](Image URL)`" + `. If direct image URLs aren't available, guide users to where they can find images on the Kalvium website.

**Tone and Engagement:**

*   Keep your messages concise and interactive.
*   Reference previous conversation details when relevant.
*   End responses with a follow-up question to encourage further discussion.

Your goal is to make the information about Kalvium as clear, organized, and accessible as possible through structured formatting.  Make sure to use Markdown for all formatting elements (bold headings, lists, links, images).`

// MarkerInstruction asks the model for the labeled lines the structured
// normalizer extracts. Only appended when that policy is active.
const MarkerInstruction = `Shape every answer as three labeled lines:
Heading: <short title>
Content: <the answer>
Follow-up Question: <one question for the user>`

const defaultGreeting = "Hello! I'm your Kalvium specialist. I've been designed to share insightful, structured insights about Kalvium. How familiar are you with it so far?"

// Seed produces the instruction and greeting that open every transcript.
type Seed struct {
	Instruction string
}

type SeedOption func(*seedOptions)

type seedOptions struct {
	markers bool
}

// WithMarkerInstruction appends MarkerInstruction to the seed instruction.
func WithMarkerInstruction() SeedOption {
	return func(o *seedOptions) { o.markers = true }
}

func NewSeed(instruction string, opts ...SeedOption) Seed {
	var o seedOptions
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}
	if o.markers {
		instruction += "\n\n" + MarkerInstruction
	}
	return Seed{Instruction: instruction}
}

// Greeting is parameterized by an optional display name.
func (s Seed) Greeting(displayName string) string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return defaultGreeting
	}
	return fmt.Sprintf("Hello %s! I'm your Kalvium specialist. I've been designed to share insightful, structured insights about Kalvium. How familiar are you with it so far?", name)
}
