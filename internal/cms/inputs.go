package cms

// CaseStudyInput is the editable part of a case study. An empty slug is
// derived from the title.
type CaseStudyInput struct {
	Slug          string   `json:"slug" yaml:"slug" validate:"omitempty,slug"`
	Title         string   `json:"title" yaml:"title" validate:"required,max=200"`
	Summary       string   `json:"summary" yaml:"summary" validate:"max=1000"`
	Challenge     string   `json:"challenge" yaml:"challenge" validate:"max=10000"`
	Solution      string   `json:"solution" yaml:"solution" validate:"max=10000"`
	Outcome       string   `json:"outcome" yaml:"outcome" validate:"max=10000"`
	Technologies  []string `json:"technologies" yaml:"technologies" validate:"max=50,dive,max=60"`
	CoverImageURL string   `json:"cover_image_url" yaml:"cover_image_url" validate:"omitempty,url"`
	Featured      bool     `json:"featured" yaml:"featured"`
	Published     bool     `json:"published" yaml:"published"`
	SortOrder     int      `json:"sort_order" yaml:"sort_order"`
}

// ExperienceInput is one timeline entry. Dates use YYYY-MM-DD.
type ExperienceInput struct {
	Company     string   `json:"company" yaml:"company" validate:"required,max=200"`
	Role        string   `json:"role" yaml:"role" validate:"required,max=200"`
	Location    string   `json:"location" yaml:"location" validate:"max=200"`
	StartDate   string   `json:"start_date" yaml:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string   `json:"end_date" yaml:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Current     bool     `json:"current" yaml:"current"`
	Description string   `json:"description" yaml:"description" validate:"max=5000"`
	Highlights  []string `json:"highlights" yaml:"highlights" validate:"max=30,dive,max=500"`
	SortOrder   int      `json:"sort_order" yaml:"sort_order"`
}

// CoreValueInput is one core value card.
type CoreValueInput struct {
	Title       string `json:"title" yaml:"title" validate:"required,max=120"`
	Description string `json:"description" yaml:"description" validate:"max=2000"`
	Icon        string `json:"icon" yaml:"icon" validate:"max=80"`
	SortOrder   int    `json:"sort_order" yaml:"sort_order"`
}

// ImageInput describes one gallery image.
type ImageInput struct {
	URL       string `json:"url" yaml:"url" validate:"required,url"`
	AltText   string `json:"alt_text" yaml:"alt_text" validate:"max=300"`
	Caption   string `json:"caption" yaml:"caption" validate:"max=500"`
	Category  string `json:"category" yaml:"category" validate:"max=60"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

// SeoInput is the metadata of one page.
type SeoInput struct {
	Title        string   `json:"title" yaml:"title" validate:"required,max=70"`
	Description  string   `json:"description" yaml:"description" validate:"max=320"`
	Keywords     []string `json:"keywords" yaml:"keywords" validate:"max=30,dive,max=60"`
	OGImageURL   string   `json:"og_image_url" yaml:"og_image_url" validate:"omitempty,url"`
	CanonicalURL string   `json:"canonical_url" yaml:"canonical_url" validate:"omitempty,url"`
}

// HeroInput is the landing page hero.
type HeroInput struct {
	Headline      string `json:"headline" yaml:"headline" validate:"required,max=200"`
	Subheadline   string `json:"subheadline" yaml:"subheadline" validate:"max=500"`
	CTAText       string `json:"cta_text" yaml:"cta_text" validate:"max=60"`
	CTAURL        string `json:"cta_url" yaml:"cta_url" validate:"omitempty,max=500"`
	BackgroundURL string `json:"background_url" yaml:"background_url" validate:"omitempty,url"`
}

// ContactInput is a public contact form submission. Website is a honeypot
// field that real visitors never fill in.
type ContactInput struct {
	Name    string `json:"name" yaml:"name" validate:"required,max=120"`
	Email   string `json:"email" yaml:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" yaml:"subject" validate:"max=200"`
	Message string `json:"message" yaml:"message" validate:"required,min=10,max=5000"`
	Website string `json:"website" yaml:"website"`
}
