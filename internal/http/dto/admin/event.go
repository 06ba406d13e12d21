package admin

// EventResponse representa un intento de exchange auditado.
type EventResponse struct {
	ID                string   `json:"id"`
	ClientID          string   `json:"client_id"`
	PolicyID          *string  `json:"policy_id,omitempty"`
	Subject           string   `json:"subject,omitempty"`
	SubjectTokenType  string   `json:"subject_token_type,omitempty"`
	SubjectTokenID    string   `json:"subject_token_id,omitempty"`
	RequestedAudience string   `json:"requested_audience,omitempty"`
	GrantedAudience   string   `json:"granted_audience,omitempty"`
	RequestedScopes   []string `json:"requested_scopes,omitempty"`
	GrantedScopes     []string `json:"granted_scopes,omitempty"`
	ActorSubject      *string  `json:"actor_subject,omitempty"`
	Success           bool     `json:"success"`
	Error             string   `json:"error,omitempty"`
	IssuedTokenID     *string  `json:"issued_token_id,omitempty"`
	CreatedAt         string   `json:"created_at"`
}

// EventListResponse envuelve el listado paginado por cliente.
type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
