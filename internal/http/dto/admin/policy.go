// Package admin contiene DTOs para endpoints administrativos.
package admin

// PolicyResponse representa una exchange policy en respuestas.
type PolicyResponse struct {
	ID                 string   `json:"id"`
	ClientID           string   `json:"client_id"`
	Priority           int      `json:"priority"`
	Subject            string   `json:"subject,omitempty"`
	SubjectTokenTypes  []string `json:"subject_token_types,omitempty"`
	Audiences          []string `json:"audiences,omitempty"`
	Scopes             []string `json:"scopes,omitempty"`
	ActorTokenRequired bool     `json:"actor_token_required"`
	Enabled            bool     `json:"enabled"`
	CreatedAt          string   `json:"created_at,omitempty"`
	UpdatedAt          string   `json:"updated_at,omitempty"`
}

// PolicyCreateRequest para crear una policy.
type PolicyCreateRequest struct {
	ClientID           string   `json:"client_id"`
	Priority           int      `json:"priority"`
	Subject            string   `json:"subject,omitempty"`
	SubjectTokenTypes  []string `json:"subject_token_types,omitempty"`
	Audiences          []string `json:"audiences,omitempty"`
	Scopes             []string `json:"scopes,omitempty"`
	ActorTokenRequired bool     `json:"actor_token_required"`
	Enabled            *bool    `json:"enabled,omitempty"` // default true
}

// PolicyUpdateRequest para actualizar una policy (reemplazo completo).
type PolicyUpdateRequest struct {
	Priority           int      `json:"priority"`
	Subject            string   `json:"subject,omitempty"`
	SubjectTokenTypes  []string `json:"subject_token_types,omitempty"`
	Audiences          []string `json:"audiences,omitempty"`
	Scopes             []string `json:"scopes,omitempty"`
	ActorTokenRequired bool     `json:"actor_token_required"`
	Enabled            bool     `json:"enabled"`
}

// PolicyListResponse envuelve el listado por cliente.
type PolicyListResponse struct {
	Policies []PolicyResponse `json:"policies"`
	Total    int              `json:"total"`
}
