package api

// these are the models sent to and received from API clients; they are
// distinct from the store's persistence models, which are closer to the DB
// row format.

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserModel struct {
	URI            string `json:"uri"`
	ID             string `json:"id,omitempty"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	Email          string `json:"email,omitempty"`
	Role           string `json:"role,omitempty"`
	Created        string `json:"created,omitempty"`
	Modified       string `json:"modified,omitempty"`
	LastLogoutTime string `json:"last_logout,omitempty"`
	LastLoginTime  string `json:"last_login,omitempty"`
}

type UserUpdateRequest struct {
	Username UpdateString `json:"username,omitempty"`
	Password UpdateString `json:"password,omitempty"`
	Email    UpdateString `json:"email,omitempty"`
	Role     UpdateString `json:"role,omitempty"`
}

type UpdateString struct {
	Update bool   `json:"u,omitempty"`
	Value  string `json:"v,omitempty"`
}

// InfoModel describes the running pegrun server and the engine it's built
// on, returned by GET /api/v1/info.
type InfoModel struct {
	Version struct {
		Server string `json:"server"`
		Pegrun string `json:"pegrun"`
	} `json:"version"`
}

// GrammarModel is a registered grammar as seen by API clients: the manifest
// contents plus bookkeeping fields. The compiled automata blob itself is
// never sent back; clients that need it re-derive it from the manifest and
// artifact file they uploaded.
type GrammarModel struct {
	URI          string `json:"uri"`
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ManifestTOML string `json:"manifest_toml"`
	Created      string `json:"created,omitempty"`
	Modified     string `json:"modified,omitempty"`
}

// GrammarCreateRequest is the body of POST /api/v1/grammars: a manifest
// naming the start automaton and type-tag roles, plus the compiled artifact
// that manifest's Artifact field refers to, base64-encoded so it can travel
// in a JSON body alongside the manifest text.
type GrammarCreateRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	ManifestTOML  string `json:"manifest_toml"`
	ArtifactBytes string `json:"artifact_bytes"`
}

// ParseRequest is the body of POST /api/v1/grammars/{id}/parse.
type ParseRequest struct {
	Input      string `json:"input"`
	CheckEOF   bool   `json:"check_eof"`
	MaxDepth   int    `json:"max_depth,omitempty"`
	WithTree   bool   `json:"with_tree,omitempty"`
}

// ParseResponse reports the outcome of running a ParseRequest against a
// registered grammar.
type ParseResponse struct {
	OK    bool   `json:"ok"`
	Tree  string `json:"tree,omitempty"`
	Error string `json:"error,omitempty"`
}
