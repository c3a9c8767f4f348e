// Package prompt builds the per-round persona prompts and the judge
// prompt. The templates are thin: all debate substance lives in the
// persona voice text and the conflict table, which are configuration.
package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"dev.veridex.engine/internal/models"
	"dev.veridex.engine/internal/rag"
)

// Builder renders prompts for one run. Language and geo context are
// fixed at construction so every round speaks consistently.
type Builder struct {
	tag        language.Tag
	geoContext string
}

// NewBuilder creates a builder for a run in the given language, with an
// optional geographic steering instruction.
func NewBuilder(tag language.Tag, geoContext string) *Builder {
	return &Builder{tag: tag, geoContext: geoContext}
}

// Round1 builds the thesis prompt: full persona voice, the idea anchored
// verbatim, and strict output-format instructions ending in a
// Verdict: NN/100 line.
func (b *Builder) Round1(p models.Persona, idea string, snippets []rag.Snippet) []models.Message {
	var sys strings.Builder
	if p.IsCustom {
		fmt.Fprintf(&sys, "You are %s, a domain expert invited by the user to join an expert panel evaluating a business idea.\n", p.DisplayName)
		if p.RoleDescription != "" {
			fmt.Fprintf(&sys, "Your expertise: %s.\n", p.RoleDescription)
		}
		if p.CognitiveProfile != "" {
			sys.WriteString(p.CognitiveProfile)
			sys.WriteString("\n")
		}
		if p.RAGContext != "" {
			sys.WriteString("\nBackground material from your own documents:\n")
			sys.WriteString(p.RAGContext)
			sys.WriteString("\n")
		}
	} else {
		fmt.Fprintf(&sys, "You are %s on an expert panel evaluating a business idea.\n", p.DisplayName)
		fmt.Fprintf(&sys, "Role: %s.\n", p.RoleDescription)
		sys.WriteString(p.CognitiveProfile)
		sys.WriteString("\n")
	}
	if b.geoContext != "" {
		sys.WriteString("\nGeographic context: ")
		sys.WriteString(b.geoContext)
		sys.WriteString("\n")
	}
	sys.WriteString("\nBase every claim on the idea exactly as stated below. Do not invent features, numbers or commitments the author never made.")

	var usr strings.Builder
	usr.WriteString("The idea under evaluation, verbatim:\n\n")
	fmt.Fprintf(&usr, "\"\"\"\n%s\n\"\"\"\n", idea)
	if len(snippets) > 0 {
		usr.WriteString("\nRelevant market context retrieved for this idea:\n")
		for _, s := range snippets {
			fmt.Fprintf(&usr, "- %s\n", s.Text)
		}
	}
	usr.WriteString("\nGive your independent assessment from your own perspective. Structure it as:\n")
	usr.WriteString("1. Core thesis (your single strongest claim about this idea)\n")
	usr.WriteString("2. Supporting analysis\n")
	usr.WriteString("3. The assumption you are least sure of\n")
	usr.WriteString("\nEnd with exactly one line of the form `Verdict: NN/100` where NN is your score for the idea.")
	b.appendLanguageDirective(&usr)

	return []models.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: usr.String()},
	}
}

// Round2 builds the antithesis prompt: condensed identity, the resolved
// conflict target, and a fabrication guard tying every attack to the
// actual Round-1 transcript.
func (b *Builder) Round2(p models.Persona, idea, targetName string, round1 []models.RoundResult) []models.Message {
	sys := b.condensedIdentity(p)

	var usr strings.Builder
	usr.WriteString("Round 1 transcript of the panel:\n\n")
	writeTranscript(&usr, round1)
	fmt.Fprintf(&usr, "\nThe idea under evaluation, verbatim:\n\n\"\"\"\n%s\n\"\"\"\n", idea)
	fmt.Fprintf(&usr, "\nYour assigned opponent for this round is %s.\n", targetName)
	usr.WriteString("\nProduce:\n")
	fmt.Fprintf(&usr, "1. A primary attack (~200 words) on the weakest claim in %s's Round 1 argument.\n", targetName)
	usr.WriteString("2. A secondary scan (~50 words) flagging one questionable claim from a different panelist, naming them.\n")
	usr.WriteString("\nQuote or cite only claims that appear in the transcript above. Do not attribute to any panelist a claim they did not make.")
	b.appendLanguageDirective(&usr)

	return []models.Message{
		{Role: "system", Content: sys},
		{Role: "user", Content: usr.String()},
	}
}

// Round3 builds the synthesis prompt: a mandatory quoted concession, a
// refined position, and a restated score that may differ from Round 1.
func (b *Builder) Round3(p models.Persona, idea string, round2 []models.RoundResult) []models.Message {
	sys := b.condensedIdentity(p)

	var usr strings.Builder
	usr.WriteString("Round 2 transcript of the panel:\n\n")
	writeTranscript(&usr, round2)
	fmt.Fprintf(&usr, "\nThe idea under evaluation, verbatim:\n\n\"\"\"\n%s\n\"\"\"\n", idea)
	usr.WriteString("\nClose out your position:\n")
	usr.WriteString("1. Concession: quote one opposing claim from the transcript that you now accept, and say why.\n")
	usr.WriteString("2. Refinement: restate your position, adjusted for everything you heard.\n")
	usr.WriteString("\nEnd with exactly one line of the form `Score: NN/100`. The score may differ from your Round 1 verdict.")
	b.appendLanguageDirective(&usr)

	return []models.Message{
		{Role: "system", Content: sys},
		{Role: "user", Content: usr.String()},
	}
}

// Judge builds the verdict prompt from the full three-round transcript.
// The output scaffold is rendered in the run's language; the weighting
// rules steer the judge away from naive averaging.
func (b *Builder) Judge(idea string, rounds [][]models.RoundResult) []models.Message {
	var sys strings.Builder
	sys.WriteString("You are the presiding judge of an expert panel that has debated a business idea over three rounds.\n")
	sys.WriteString("Weigh the arguments, not the credentials. Apply these rules:\n")
	sys.WriteString("- A low score from any panelist that no one refuted must keep your aggregate low.\n")
	sys.WriteString("- When panelists land on conflicting extremes, side with the higher-risk reading rather than averaging them.\n")
	sys.WriteString("- An argument that survived a direct Round 2 attack counts for more than one that was never challenged.\n")

	var usr strings.Builder
	fmt.Fprintf(&usr, "The idea under evaluation, verbatim:\n\n\"\"\"\n%s\n\"\"\"\n", idea)
	usr.WriteString("\nFull debate transcript:\n")
	for i, round := range rounds {
		fmt.Fprintf(&usr, "\n--- Round %d ---\n\n", i+1)
		writeTranscript(&usr, round)
	}
	usr.WriteString("\nDeliver your verdict using exactly this structure, replacing NN with your score from 0 to 100:\n\n")
	usr.WriteString(judgeSectionsFor(b.baseLang()))
	b.appendLanguageDirective(&usr)

	return []models.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: usr.String()},
	}
}

// condensedIdentity is the short persona framing used in Rounds 2 and 3.
// Full voice text is a Round 1 cost; later rounds lean on the transcript.
func (b *Builder) condensedIdentity(p models.Persona) string {
	role := p.RoleDescription
	if role == "" {
		role = "an invited domain expert"
	}
	return fmt.Sprintf("You are %s (%s), continuing a panel debate about a business idea. Stay in character and keep your perspective from earlier rounds.", p.DisplayName, role)
}

func (b *Builder) appendLanguageDirective(w *strings.Builder) {
	if b.tag == language.English {
		return
	}
	name := display.English.Languages().Name(b.tag)
	fmt.Fprintf(w, "\n\nWrite your entire response in %s.", name)
}

func (b *Builder) baseLang() string {
	base, _ := b.tag.Base()
	return base.String()
}

func writeTranscript(w *strings.Builder, results []models.RoundResult) {
	for _, r := range results {
		fmt.Fprintf(w, "### %s\n%s\n\n", r.DisplayName, r.Text)
	}
}
