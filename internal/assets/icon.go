package assets

import (
	"net/url"
	"regexp"
	"strings"
)

type AssetKind string

const (
	KindHero AssetKind = "hero"
	KindItem AssetKind = "item"
	KindRank AssetKind = "rank"
)

// The upstream schema for image fields is undocumented and differs between
// asset kinds. Extraction probes a prioritized list of known field paths
// first; when none match it falls back to scanning the whole object graph
// for URL-shaped strings and scoring the candidates.

var iconProbePaths = map[AssetKind][]string{
	KindHero: {
		"icon", "icon_url", "image", "image_url", "small_image", "portrait_image",
		"images.icon", "images.small", "images.portrait", "images.hero",
		"images.card", "images.top_bar",
	},
	KindItem: {
		"icon", "icon_url", "image", "image_url", "shop_image",
		"images.icon", "images.small", "images.shop", "images.item",
	},
	KindRank: {
		"icon", "icon_url", "image", "image_url", "badge_image",
		"images.icon", "images.badge", "images.small",
	},
}

type iconScoreRule struct {
	token     string
	base      int
	kind      AssetKind
	kindBonus int
}

// Scoring table for fallback candidates. kindBonus applies on top of base
// when the candidate is scored for that kind.
var iconScoreRules = []iconScoreRule{
	{token: "icon", base: 20},
	{token: "small", base: 8},
	{token: "thumb", base: 8},
	{token: "badge", base: 2, kind: KindRank, kindBonus: 18},
	{token: "portrait", base: 2, kind: KindHero, kindBonus: 13},
	{token: "hero", base: 0, kind: KindHero, kindBonus: 10},
	{token: "item", base: 0, kind: KindItem, kindBonus: 10},
}

const maxIconScanDepth = 5

var (
	imageExtRe      = regexp.MustCompile(`\.(png|webp|jpg|jpeg|avif)(\?|$)`)
	bareImagePathRe = regexp.MustCompile(`(?i)^[a-z0-9/_-]+\.(png|webp|jpg|jpeg|avif)$`)
)

// ExtractIconURL resolves the best icon URL for one raw asset row, or nil
// when nothing URL-shaped exists anywhere in the row.
func ExtractIconURL(entity map[string]interface{}, kind AssetKind, baseURL string) *string {
	if entity == nil {
		return nil
	}

	for _, path := range iconProbePaths[kind] {
		if raw := asURLString(getByPath(entity, path)); raw != "" {
			if normalized := normalizeIconURL(raw, baseURL); normalized != "" {
				return &normalized
			}
		}
	}

	var candidates []string
	collectURLsDeep(entity, 0, &candidates)
	if len(candidates) == 0 {
		return nil
	}

	best := ""
	bestScore := -1
	for _, candidate := range candidates {
		normalized := normalizeIconURL(candidate, baseURL)
		if normalized == "" {
			continue
		}
		if score := ScoreIconURL(candidate, kind); score > bestScore {
			best = normalized
			bestScore = score
		}
	}
	if best == "" {
		return nil
	}
	return &best
}

// ScoreIconURL rates a candidate URL for an asset kind via the rule table.
func ScoreIconURL(rawURL string, kind AssetKind) int {
	lower := strings.ToLower(rawURL)
	score := 0
	for _, rule := range iconScoreRules {
		if !strings.Contains(lower, rule.token) {
			continue
		}
		score += rule.base
		if rule.kind == kind {
			score += rule.kindBonus
		}
	}
	if imageExtRe.MatchString(lower) {
		score += 4
	}
	if strings.Contains(lower, "http") {
		score++
	}
	return score
}

func collectURLsDeep(input interface{}, depth int, acc *[]string) {
	if depth > maxIconScanDepth || input == nil {
		return
	}

	switch v := input.(type) {
	case string:
		if u := asURLString(v); u != "" {
			*acc = append(*acc, u)
		}
	case []interface{}:
		for _, item := range v {
			collectURLsDeep(item, depth+1, acc)
		}
	case map[string]interface{}:
		for _, value := range v {
			collectURLsDeep(value, depth+1, acc)
		}
	}
}

func getByPath(input map[string]interface{}, path string) interface{} {
	var current interface{} = input
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current = node[segment]
	}
	return current
}

func asURLString(value interface{}) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "/") {
		return trimmed
	}
	if bareImagePathRe.MatchString(trimmed) {
		return trimmed
	}
	return ""
}

func normalizeIconURL(raw, baseURL string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
