package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// ProfileFact is the candidate contact information found in a resume. Empty
// fields were not found.
type ProfileFact struct {
	Name      string   `json:"name,omitempty"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Location  string   `json:"location,omitempty"`
	Languages []string `json:"languages,omitempty"`
	LinkedIn  string   `json:"linkedin,omitempty"`
	GitHub    string   `json:"github,omitempty"`
}

// Empty reports whether nothing was found.
func (p ProfileFact) Empty() bool {
	return p.Name == "" && p.Email == "" && p.Phone == "" && p.Location == "" &&
		len(p.Languages) == 0 && p.LinkedIn == "" && p.GitHub == ""
}

// Contact joins the email and phone, whichever are known.
func (p ProfileFact) Contact() string {
	parts := make([]string, 0, 2)
	for _, v := range []string{p.Email, p.Phone} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// profileRule captures a value with its first group, or the whole match when
// the pattern has no group. format, when set, rewrites the submatches.
type profileRule struct {
	pattern *regexp.Regexp
	format  func(groups []string) string
}

func (r profileRule) find(text string) string {
	groups := r.pattern.FindStringSubmatch(text)
	if groups == nil {
		return ""
	}
	if r.format != nil {
		return strings.TrimSpace(r.format(groups))
	}
	if len(groups) > 1 {
		return strings.TrimSpace(groups[1])
	}
	return strings.TrimSpace(groups[0])
}

// firstMatch evaluates rules top to bottom and returns the first value found.
func firstMatch(rules []profileRule, text string) string {
	for _, rule := range rules {
		if v := rule.find(text); v != "" {
			return v
		}
	}
	return ""
}

// namePart is a capitalized word. Portuguese particles may sit between parts.
const namePart = `\p{Lu}\p{Ll}+(?:[ \t]+(?:d[aeo]s?[ \t]+)?\p{Lu}\p{Ll}+)+`

var nameRules = []profileRule{
	{pattern: regexp.MustCompile(`(?im)^[ \t]*(?:nome|name)[ \t]*:[ \t]*(?-i:(` + namePart + `))`)},
	{pattern: regexp.MustCompile(`(?m)^[ \t]*(` + namePart + `)[ \t]*\r?$`)},
}

var emailRules = []profileRule{
	{pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
}

var phoneRules = []profileRule{
	{
		pattern: regexp.MustCompile(`(?:\+55[ \t-]*)?\(?\b(\d{2})\)?[ \t-]*(\d{4,5})[ \t-]?(\d{4})\b`),
		format: func(g []string) string {
			return fmt.Sprintf("(%s) %s-%s", g[1], g[2], g[3])
		},
	},
	{pattern: regexp.MustCompile(`\+\d{1,3}[ \t-]?\(?\d{1,4}\)?(?:[ \t-]?\d{2,4}){2,4}\b`)},
}

var locationRules = []profileRule{
	{pattern: regexp.MustCompile(`(?im)^[ \t]*(?:localização|localizacao|location|endereço|endereco|address|cidade|city)[ \t]*:[ \t]*([^\n]+)`)},
	{
		pattern: regexp.MustCompile(`(?:^|[^\p{L}])(\p{Lu}\p{Ll}+(?:[ \t]+(?:d[aeo]s?[ \t]+)?\p{Lu}\p{Ll}+)*)[ \t]*[,-][ \t]*([A-Z]{2})\b`),
		format: func(g []string) string {
			return g[1] + ", " + g[2]
		},
	},
}

var linkedInRules = []profileRule{
	{pattern: regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/[a-z0-9_-]+`)},
}

var gitHubRules = []profileRule{
	{pattern: regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[a-z0-9-]+`)},
}

var (
	languageLabel = regexp.MustCompile(`(?im)^[ \t]*(?:idiomas|línguas|linguas|languages)[ \t]*:[ \t]*([^\n]+)`)
	languageSplit = regexp.MustCompile(`\s*(?:[,;/|]|\s+(?:and|e)\s+)\s*`)

	languageLevel = regexp.MustCompile(`(?i)\b(português|portugues|portuguese|inglês|ingles|english|espanhol|spanish|francês|frances|french|alemão|alemao|german|italiano|italian|chinês|chines|chinese|japonês|japones|japanese)[ \t]*[:(-][ \t]*(fluente|fluent|nativo|native|avançado|avancado|advanced|intermediário|intermediario|intermediate|básico|basico|basic)`)
)

// Profile extracts the candidate contact information from a resume. The
// name rules expect the original capitalization.
func Profile(text string) ProfileFact {
	return ProfileFact{
		Name:      firstMatch(nameRules, text),
		Email:     firstMatch(emailRules, text),
		Phone:     firstMatch(phoneRules, text),
		Location:  firstMatch(locationRules, text),
		Languages: languages(text),
		LinkedIn:  firstMatch(linkedInRules, text),
		GitHub:    firstMatch(gitHubRules, text),
	}
}

// languages prefers an explicit languages line and otherwise collects every
// "Language: Level" pair.
func languages(text string) []string {
	if m := languageLabel.FindStringSubmatch(text); m != nil {
		var found []string
		for _, item := range languageSplit.Split(strings.TrimSpace(m[1]), -1) {
			if item = strings.TrimSpace(item); item != "" {
				found = appendUnique(found, item)
			}
		}
		if len(found) > 0 {
			return found
		}
	}

	var found []string
	for _, m := range languageLevel.FindAllStringSubmatch(text, -1) {
		found = appendUnique(found, fmt.Sprintf("%s (%s)", m[1], m[2]))
	}
	return found
}

func appendUnique(items []string, item string) []string {
	for _, existing := range items {
		if strings.EqualFold(existing, item) {
			return items
		}
	}
	return append(items, item)
}
