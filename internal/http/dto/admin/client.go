package admin

// ClientResponse representa un cliente OAuth registrado. El secret nunca
// se devuelve después de la creación.
type ClientResponse struct {
	ID        string `json:"id"`
	ClientID  string `json:"client_id"`
	Name      string `json:"name,omitempty"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ClientCreateRequest para registrar un cliente.
type ClientCreateRequest struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name,omitempty"`
	Secret   string `json:"secret"`
}

// ClientCreateResponse devuelve el cliente creado. Secret viene seteado
// solo cuando el servidor generó el secret: no se puede recuperar después.
type ClientCreateResponse struct {
	Client ClientResponse `json:"client"`
	Secret string         `json:"secret,omitempty"`
}

// ClientListResponse envuelve el listado.
type ClientListResponse struct {
	Clients []ClientResponse `json:"clients"`
	Total   int              `json:"total"`
}
