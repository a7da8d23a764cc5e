// Package classify assigns disease-entity, trial-type and study-class
// labels from title text and publication-type tags. Rules are keyword
// heuristics evaluated in a fixed order; the ordering encodes priority
// (e.g. NSCLC before generic lung terms) and must stay stable for
// output parity across runs.
package classify

import (
	"regexp"
	"strings"
)

// Labels is the classification result. TrialType may be empty: absence
// of a design label is meaningful, not an error.
type Labels struct {
	Entity     string
	TrialType  string
	StudyClass string
}

const (
	EntityNSCLC    = "NSCLC"
	EntitySCLC     = "SCLC"
	EntityMeso     = "Mesothelioma"
	EntityThymic   = "Thymic"
	EntityThoracic = "Thoracic other"
	EntityOther    = "Other"

	TrialRCT         = "RCT"
	TrialPhaseIII    = "Phase III"
	TrialPhaseII     = "Phase II"
	TrialGuideline   = "Guideline"
	TrialReview      = "Review"
	TrialProspective = "Prospective"

	ClassProspective = "Prospective"
	ClassGuideline   = "Guideline"
	ClassReview      = "Review"
	ClassPreclinical = "Preclinical"
	ClassOther       = "Other"
)

// input bundles the lower-cased views both rule sets test against.
type input struct {
	title    string
	pubTypes []string
}

func (in input) anyTitle(keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(in.title, kw) {
			return true
		}
	}
	return false
}

func (in input) anyPubType(keywords ...string) bool {
	for _, pt := range in.pubTypes {
		for _, kw := range keywords {
			if strings.Contains(pt, kw) {
				return true
			}
		}
	}
	return false
}

type rule struct {
	label string
	match func(input) bool
}

var entityRules = []rule{
	// Every hyphenation of "non(-)small(-)cell" must land here: the SCLC
	// keywords below are substrings of these, so a miss flips the entity.
	{EntityNSCLC, func(in input) bool {
		return in.anyTitle("non-small cell", "non small cell", "non-small-cell", "non small-cell", "nsclc")
	}},
	{EntitySCLC, func(in input) bool {
		return in.anyTitle("small-cell lung", "small cell lung", "sclc")
	}},
	{EntityMeso, func(in input) bool { return in.anyTitle("mesothelioma") }},
	{EntityThymic, func(in input) bool { return in.anyTitle("thymoma", "thymic") }},
	{EntityThoracic, func(in input) bool {
		return in.anyTitle("lung", "pulmonary", "thoracic")
	}},
}

var (
	phaseIIIExpr = regexp.MustCompile(`\bphase\s*(iii|3)\b`)
	phaseIIExpr  = regexp.MustCompile(`\bphase\s*(ii|2)\b`)
)

// trialRules lean on publication-type tags, with title-text phase
// markers as a fallback signal when the tag is absent.
var trialRules = []rule{
	{TrialRCT, func(in input) bool {
		return in.anyPubType("randomized controlled trial")
	}},
	{TrialPhaseIII, func(in input) bool {
		return in.anyPubType("clinical trial, phase iii") || phaseIIIExpr.MatchString(in.title)
	}},
	{TrialPhaseII, func(in input) bool {
		return in.anyPubType("clinical trial, phase ii") || phaseIIExpr.MatchString(in.title)
	}},
	{TrialGuideline, func(in input) bool {
		return in.anyPubType("guideline")
	}},
	{TrialReview, func(in input) bool {
		return in.anyPubType("review", "meta-analysis")
	}},
	{TrialProspective, func(in input) bool {
		return in.anyPubType("clinical trial", "observational study")
	}},
}

// preclinicalKeywords flag lab-model work regardless of trial tags.
var preclinicalKeywords = []string{
	"xenograft", "murine", "mouse model", "organoid",
	"cell line", "in vitro", "in vivo", "preclinical",
}

// Classify is a pure function of (title, publication types): same input
// always yields the same three labels.
func Classify(title string, pubTypes []string) Labels {
	in := input{title: strings.ToLower(title)}
	for _, pt := range pubTypes {
		in.pubTypes = append(in.pubTypes, strings.ToLower(pt))
	}

	labels := Labels{Entity: EntityOther, StudyClass: ClassOther}

	for _, r := range entityRules {
		if r.match(in) {
			labels.Entity = r.label
			break
		}
	}

	for _, r := range trialRules {
		if r.match(in) {
			labels.TrialType = r.label
			break
		}
	}

	labels.StudyClass = studyClass(in, labels.TrialType)
	return labels
}

// studyClass collapses trial types into coarse display buckets and adds
// independent guideline/review/preclinical checks.
func studyClass(in input, trialType string) string {
	switch trialType {
	case TrialRCT, TrialPhaseIII, TrialPhaseII, TrialProspective:
		return ClassProspective
	case TrialGuideline:
		return ClassGuideline
	case TrialReview:
		return ClassReview
	}
	if in.anyPubType("guideline") || in.anyTitle("guideline", "consensus statement") {
		return ClassGuideline
	}
	if in.anyPubType("review", "meta-analysis") {
		return ClassReview
	}
	if in.anyTitle(preclinicalKeywords...) {
		return ClassPreclinical
	}
	return ClassOther
}
