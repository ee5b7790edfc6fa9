package store

// Snapshot is the read-only projection of the store handed to the decision
// engine. Everything is copied by value; mutating a snapshot never touches
// the store. Citation bookkeeping (ledger internals, record timestamps) is
// left out to keep prompts small; source URLs remain as provenance hints.
type Snapshot struct {
	Subject      SubjectView   `json:"company"`
	Contacts     []ContactView `json:"contacts"`
	PainPoints   []FactView    `json:"pain_points"`
	Tech         []TechView    `json:"tech_stack"`
	News         []NewsView    `json:"news"`
	ImageCount   int           `json:"images_collected"`
	Explored     []string      `json:"sources_explored"`
	PageExcerpts []PageExcerpt `json:"page_content,omitempty"`
}

type SubjectView struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type ContactView struct {
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

type FactView struct {
	Description string `json:"description"`
	Evidence    string `json:"evidence,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
}

type TechView struct {
	Technology string `json:"technology"`
	Category   string `json:"category,omitempty"`
}

type NewsView struct {
	Title     string `json:"title"`
	Summary   string `json:"summary,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

type PageExcerpt struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Snapshot builds the current projection for prompting.
func (k *Knowledge) Snapshot() Snapshot {
	snap := Snapshot{
		Subject: SubjectView{
			Name:    k.subject.Name,
			Website: k.subject.Website,
			Address: k.subject.Address,
			Phone:   k.subject.Phone,
		},
		Contacts:   make([]ContactView, 0, len(k.contacts)),
		PainPoints: make([]FactView, 0, len(k.painPoints)),
		Tech:       make([]TechView, 0, len(k.tech)),
		News:       make([]NewsView, 0, len(k.news)),
		ImageCount: len(k.images),
		Explored:   make([]string, 0, len(k.explored)),
	}

	for _, c := range k.contacts {
		snap.Contacts = append(snap.Contacts, ContactView{
			Name:      c.Name,
			Title:     c.Title,
			Email:     c.Email,
			Phone:     c.Phone,
			SourceURL: c.SourceURL,
		})
	}
	for _, p := range k.painPoints {
		snap.PainPoints = append(snap.PainPoints, FactView{
			Description: p.Description,
			Evidence:    p.Evidence,
			SourceURL:   p.SourceURL,
		})
	}
	for _, t := range k.tech {
		snap.Tech = append(snap.Tech, TechView{Technology: t.Technology, Category: t.Category})
	}
	for _, n := range k.news {
		snap.News = append(snap.News, NewsView{Title: n.Title, Summary: n.Summary, SourceURL: n.SourceURL})
	}
	for _, s := range k.explored {
		snap.Explored = append(snap.Explored, s.URL)
	}
	for _, u := range k.excerptURLs {
		snap.PageExcerpts = append(snap.PageExcerpts, PageExcerpt{URL: u, Text: k.excerpts[u]})
	}

	return snap
}
