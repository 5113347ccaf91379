package model

const (
	MaxTitleTagLength        = 60
	MaxMetaDescriptionLength = 160
)

// Section is one H2 block of the outline with its H3 subheadings.
type Section struct {
	Heading     string   `json:"h2"`
	Subheadings []string `json:"h3"`
}

// Outline is the heading structure used to shape generated content.
type Outline struct {
	H1       string    `json:"h1"`
	Sections []Section `json:"sections"`
}

type SEOMetadata struct {
	TitleTag        string `json:"title_tag"`
	MetaDescription string `json:"meta_description"`
}

type KeywordAnalysis struct {
	PrimaryKeyword    string   `json:"primary_keyword"`
	SecondaryKeywords []string `json:"secondary_keywords"`
	KeywordDensity    float64  `json:"keyword_density"`
}

type InternalLink struct {
	AnchorText string `json:"anchor_text"`
	TargetPage string `json:"target_page"`
	Context    string `json:"context"`
}

type ExternalReference struct {
	SourceName string `json:"source_name"`
	URL        string `json:"url"`
	Context    string `json:"context"`
}

// Article is the generated content with its SEO annotations.
type Article struct {
	Content            string              `json:"content"`
	Outline            Outline             `json:"outline"`
	SEOMetadata        SEOMetadata         `json:"seo_metadata"`
	KeywordAnalysis    KeywordAnalysis     `json:"keyword_analysis"`
	InternalLinks      []InternalLink      `json:"internal_links"`
	ExternalReferences []ExternalReference `json:"external_references"`
	WordCount          int                 `json:"word_count"`
	FAQSection         *string             `json:"faq_section,omitempty"`
}

// SEOAudit summarises the markup structure of a generated article.
type SEOAudit struct {
	H1Count        int  `json:"h1_count"`
	H2Count        int  `json:"h2_count"`
	H3Count        int  `json:"h3_count"`
	LinkCount      int  `json:"link_count"`
	KeywordInIntro bool `json:"keyword_in_intro"`
}

func (o Outline) Clone() Outline {
	cp := Outline{H1: o.H1}
	if o.Sections != nil {
		cp.Sections = make([]Section, len(o.Sections))
		for i, s := range o.Sections {
			cp.Sections[i] = Section{Heading: s.Heading}
			if s.Subheadings != nil {
				cp.Sections[i].Subheadings = append([]string(nil), s.Subheadings...)
			}
		}
	}
	return cp
}

func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Outline = a.Outline.Clone()
	if a.KeywordAnalysis.SecondaryKeywords != nil {
		cp.KeywordAnalysis.SecondaryKeywords = append([]string(nil), a.KeywordAnalysis.SecondaryKeywords...)
	}
	if a.InternalLinks != nil {
		cp.InternalLinks = append([]InternalLink(nil), a.InternalLinks...)
	}
	if a.ExternalReferences != nil {
		cp.ExternalReferences = append([]ExternalReference(nil), a.ExternalReferences...)
	}
	if a.FAQSection != nil {
		faq := *a.FAQSection
		cp.FAQSection = &faq
	}
	return &cp
}
