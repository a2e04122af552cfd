package pipeline

import (
	"fmt"
	"strings"
)

const placementInstruction = "Return bounding boxes as a JSON array with labels."

const problemsPrompt = "Create a list of the physical health problems described in this audio clip, " +
	"separated by commas. Do not use commas anywhere else: splitting the text on commas " +
	"must give short point-form statements."

func recommendationsPrompt(problems []string, limit int) string {
	resident := "experiencing significant challenges with physical mobility"
	if len(problems) > 0 {
		resident += ": " + strings.Join(problems, ", ")
	}

	return fmt.Sprintf(`Role: You are an occupational therapist and interior designer specialized in accessible home design, guided by ADA principles adapted for residential settings.
Context: The resident of this home is an elderly individual %s. This increases their risk of falls.
Task: Analyze the provided image of the house interior. Using ADA guidelines and best practices for aging in place, fall prevention and universal design, identify hazards and suggest specific, actionable modifications that improve safety and accessibility for this resident.
Consider where present:
Toilet area: toilet height, clear transfer space, grab bar placement, toilet paper holder reach.
Sink and vanity: counter height, knee space, faucet controls, mirror height, reach to soap and towels, clutter.
Bathing area: entry method and curb height, grab bars, seating, control reach and anti-scald features, shower head type, floor slip resistance.
Flooring: material and slip resistance when wet, loose mats or rugs.
Output format: a JSON array of at most %d objects, most important first. Each object has these string fields:
"modification": the recommended change, specific enough that an architect knows where on the image to draw it.
"rationale": why it matters for someone with mobility or balance issues, citing ADA principles or fall prevention where applicable.
"cost": estimated cost as a number of dollar signs.
"installation": a brief description of the installation process.`, resident, limit)
}

func placementPrompt(modification string) string {
	return fmt.Sprintf(`Role: Act as an occupational therapist and interior designer specializing in accessible home modifications for seniors with significant mobility or balance issues and fall risk, using adapted ADA principles.
Task: Locate WHERE in the input image the accessibility modification below should be placed.
Output requirements: coordinates for 1 bounding box as "box_2d" [y1, x1, y2, x2] on a 0-1000 scale.
"modification": %s`, modification)
}

func visualizationPrompt(modification string) string {
	return fmt.Sprintf(`Role: Act as an occupational therapist and interior designer specializing in accessible home modifications for seniors with significant mobility or balance issues and fall risk, using adapted ADA principles.
Task: Edit the input image to realistically visualize the accessibility modification below.
Output requirements:
Generate a photorealistic edited image.
Integrate the modification seamlessly, matching lighting and perspective.
Reflect the modification accurately in type, location and detail.
Keep the change contextually appropriate for accessibility needs.

"modification": %s`, modification)
}
