// Package prompts builds the text instructions sent to the generation models.
// Every builder is pure: identical inputs always produce identical text.
package prompts

import (
	"fmt"
	"strings"

	"github.com/EasterCompany/dex-runway-service/types"
	"google.golang.org/genai"
)

// BuildRoadmapPrompt instructs the roadmap model to turn a goal into four milestones,
// each rewarded with a distinct luxury garment.
func BuildRoadmapPrompt(goal, designer, color, vibe, targetDate string) string {
	var b strings.Builder

	b.WriteString("You are both a strict life coach and a luxury fashion creative director.\n\n")

	b.WriteString("## RULE 1: THE GRIND\n")
	fmt.Fprintf(&b, "The user's goal is: %s. They want to achieve it by %s.\n", goal, targetDate)
	b.WriteString("Break this mission into exactly 4 sequential, motivating, actionable milestones (milestone_task). ")
	b.WriteString("Pace them against the time available, but NEVER write literal dates, months or years in any milestone text.\n\n")

	b.WriteString("## RULE 2: THE REWARD\n")
	fmt.Fprintf(&b, "Design a 4-piece high-fashion outfit inspired by the house of %s, in a %s palette, with a %s aesthetic. ", designer, color, vibe)
	b.WriteString("Analyze the attached inspiration image and carry its textures, shapes, silhouettes or themes into the outfit. ")
	b.WriteString("The clothing must NOT be thematic to the goal: a tech job goal still earns runway-ready luxury fashion, not office wear.\n")
	b.WriteString("The 4 items MUST be visually and categorically distinct: exactly one footwear piece, one bottom (trousers or skirt), one top or jacket, and one accessory or bag. Never repeat a category.\n\n")

	b.WriteString("## RULE 3: BRAND SAFETY\n")
	fmt.Fprintf(&b, "Never write the name %q, or any other brand or designer name, in milestone_task or clothing_item. Describe the garments by material, cut and color only.\n\n", designer)

	b.WriteString("## OUTPUT\n")
	b.WriteString("Return a JSON array of exactly 4 objects, in milestone order. Each object has target_percentage (")
	for i, p := range types.StagePercentages {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", p)
	}
	b.WriteString(" respectively), milestone_task (string) and clothing_item (string).")

	return b.String()
}

// BuildImagePrompt describes an isolated product shot of a single garment.
func BuildImagePrompt(clothingItem, vibe, color string) string {
	return fmt.Sprintf(
		"High-end luxury product photography of a single item: %s. "+
			"Color palette: %s. Aesthetic: %s. "+
			"The item is isolated and centered on a pure white background with soft, even studio lighting. "+
			"No people, no models, no mannequins, no hangers, no props, no text and no shadows. "+
			"4k, sharp focus, high fashion editorial style.",
		clothingItem, color, vibe,
	)
}

// BuildFinalLookPrompt describes one full-body photograph wearing every item together.
func BuildFinalLookPrompt(items []string, vibe, color string) string {
	var b strings.Builder
	b.WriteString("High fashion editorial photograph. A single model shown full body, head to toe, wearing a complete, coherent outfit made of exactly these pieces:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	fmt.Fprintf(&b, "Color palette: %s. Aesthetic: %s. ", color, vibe)
	b.WriteString("All pieces must be clearly visible and styled together naturally. ")
	b.WriteString("Minimalist studio backdrop, professional lighting, 4k. No logos, no brand names and no text anywhere in the image.")
	return b.String()
}

// RoadmapSchema is the structured output contract of the roadmap call.
func RoadmapSchema() *genai.Schema {
	return &genai.Schema{
		Type:     genai.TypeArray,
		MinItems: genai.Ptr[int64](types.RoadmapStageCount),
		MaxItems: genai.Ptr[int64](types.RoadmapStageCount),
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"target_percentage": {Type: genai.TypeInteger, Description: "Progress marker: 25, 50, 75 or 100."},
				"milestone_task":    {Type: genai.TypeString, Description: "Actionable milestone without literal dates."},
				"clothing_item":     {Type: genai.TypeString, Description: "One luxury garment, no brand names."},
			},
			Required:         []string{"target_percentage", "milestone_task", "clothing_item"},
			PropertyOrdering: []string{"target_percentage", "milestone_task", "clothing_item"},
		},
	}
}
