package domain

type Question struct {
	ID              string   `json:"id" yaml:"id"`
	Category        string   `json:"category" yaml:"category"`
	Prompt          string   `json:"prompt" yaml:"prompt"`
	FollowUpPrompts []string `json:"follow_up_prompts,omitempty" yaml:"follow_up_prompts"`
	Order           int      `json:"order" yaml:"order"`
	IsActive        bool     `json:"is_active" yaml:"is_active"`
	Tags            []string `json:"tags,omitempty" yaml:"tags"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Label string `json:"label"`
}
