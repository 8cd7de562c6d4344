package prompts

import "fmt"

// ============================================================================
// Moderation
// ============================================================================

// ModerationPrompt asks for a one-word CLEAN/OFFENSIVE verdict on a topic.
const ModerationPrompt = `You are a content moderator for a family-friendly joke website. The user wants to generate a joke about: "%s"

Please classify this topic request as either CLEAN or OFFENSIVE.

CLEAN topics include:
- Everyday objects, situations, activities
- Animals, food, weather, technology
- Harmless stereotypes or observations
- Wordplay, puns, silly scenarios
- Pop culture references (movies, books, etc.)

OFFENSIVE topics include:
- Sexual content or innuendo
- Violence, death, or harm
- Racist, sexist, or discriminatory content
- Profanity or crude humor
- Political controversies
- Religious mockery
- Personal attacks or bullying
- Inappropriate references to real people

Respond with only one word: either "CLEAN" or "OFFENSIVE"`

// ModerationVerdictClean is the only answer that lets a topic through.
const ModerationVerdictClean = "CLEAN"

// Moderation renders ModerationPrompt for topic.
func Moderation(topic string) string {
	return fmt.Sprintf(ModerationPrompt, topic)
}

// ============================================================================
// Comedian
// ============================================================================

// ComedianSystemPrompt is used when no SYSTEM_PROMPT override is configured.
const ComedianSystemPrompt = `You are a friendly, clever comedian who tells short, witty jokes suitable for all ages.
Create original, clean humor that is easy to understand and appropriate for families.
When given a topic, tell exactly one joke and nothing else.`

// Joke returns the user prompt for the given joke type ("normal", "story" or "limerick").
func Joke(jokeType, topic string) string {
	switch jokeType {
	case "story":
		return fmt.Sprintf("Tell me a funny, family-friendly story about %s. Make it engaging with characters and a humorous situation, but keep it appropriate for all ages. The story should be about 3-5 sentences long.", topic)
	case "limerick":
		return fmt.Sprintf("Write a funny, family-friendly limerick about %s. Follow the traditional AABBA rhyme scheme and make sure it's appropriate for all ages.", topic)
	default:
		return fmt.Sprintf("Tell me a funny, family-friendly joke about %s. Make sure it's appropriate for all ages.", topic)
	}
}

// ============================================================================
// Explainer
// ============================================================================

const ExplainerSystemPrompt = `You are a humor expert who explains why jokes are funny in simple terms.
When given a joke, provide a brief, friendly explanation of what makes it humorous.
Keep explanations under 3 sentences and family-friendly.`

// Explanation asks why joke is funny; noun is "joke", "story" or "limerick".
func Explanation(noun, joke string) string {
	return fmt.Sprintf("Please explain briefly why this %s is funny: %q", noun, joke)
}
