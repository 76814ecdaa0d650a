// Package wsconfig loads and merges the JSON configuration file: a
// top-level document naming global defaults plus a list of
// per-workspace overrides.
package wsconfig

// Role is which side of a sync a workspace entry plays.
type Role string

// Roles a workspace entry may declare.
const (
	RoleServer Role = "SERVER"
	RoleClient Role = "CLIENT"
)

// SecretType names how a workspace's AES key is supplied in the
// config file: string, base64, file-string, or file-base64.
type SecretType string

const (
	SecretString     SecretType = "string"
	SecretBase64     SecretType = "base64"
	SecretFileString SecretType = "file-string"
	SecretFileBase64 SecretType = "file-base64"
)

// Secret is the raw secret descriptor as it appears in the config
// file, before resolution into actual key bytes.
type Secret struct {
	Type  SecretType `json:"type"`
	Value string     `json:"value"`
}

// SSL names a certificate/key pair path, used both at the top level
// (server default) and per workspace (override).
type SSL struct {
	Cert string `json:"cert"`
	Key  string `json:"key"`
}

// Filter is one side's ignore/protect pattern list. Override controls
// whether a workspace-level Filter replaces or merges with the global
// one: override=false (the default) merges with the global lists,
// true replaces them outright.
type Filter struct {
	Override bool     `json:"override"`
	Ignore   []string `json:"ignore"`
	Protect  []string `json:"protect"`
}

// mergeFilter combines the global filter and the workspace-level one
// (possibly absent) into the effective filter for one workspace.
func mergeFilter(global Filter, workspace *Filter) Filter {
	if workspace == nil {
		return global
	}
	if workspace.Override {
		return *workspace
	}
	return Filter{
		Ignore:  append(append([]string{}, global.Ignore...), workspace.Ignore...),
		Protect: append(append([]string{}, global.Protect...), workspace.Protect...),
	}
}

// WorkspaceEntry is one element of the top-level "workspaces" array.
type WorkspaceEntry struct {
	Name       string  `json:"name"`
	RemoteName string  `json:"remoteName"`
	Role       Role    `json:"role"`
	Path       string  `json:"path"`
	Host       string  `json:"host"`
	Port       int     `json:"port"`
	Secret     *Secret `json:"secret"`
	SSL        *SSL    `json:"ssl"`
	Filter     *Filter `json:"filter"`
}

// Document is the parsed top-level configuration file.
type Document struct {
	Mode       string           `json:"mode"`
	Port       int              `json:"port"`
	Host       string           `json:"host"`
	SSL        *SSL             `json:"ssl"`
	Secret     *Secret          `json:"secret"`
	Filter     Filter           `json:"filter"`
	Workspaces []WorkspaceEntry `json:"workspaces"`
}

// WorkspaceConfig is the fully resolved, immutable configuration for
// one workspace, after merging global defaults into each entry.
type WorkspaceConfig struct {
	Name       string
	LocalName  string
	RemoteName string
	Role       Role
	Path       string
	Host       string
	Port       int
	AESKey     []byte
	Ignore     []string
	Protect    []string
	SSL        *SSL
}

// Resolve merges the document's global defaults into every workspace
// entry, producing the final WorkspaceConfig list in file order.
// Per-workspace secrets are resolved to raw key bytes via
// ResolveSecret, which reads the file-backed variants straight from
// the local filesystem (see secret.go).
func (d *Document) Resolve() ([]*WorkspaceConfig, error) {
	out := make([]*WorkspaceConfig, 0, len(d.Workspaces))
	for _, w := range d.Workspaces {
		filter := mergeFilter(d.Filter, w.Filter)

		host := w.Host
		if host == "" {
			host = d.Host
		}
		port := w.Port
		if port == 0 {
			port = d.Port
		}
		ssl := w.SSL
		if ssl == nil {
			ssl = d.SSL
		}

		secret := w.Secret
		if secret == nil {
			secret = d.Secret
		}
		var key []byte
		if secret != nil {
			k, err := ResolveSecret(*secret)
			if err != nil {
				return nil, err
			}
			key = k
		}

		out = append(out, &WorkspaceConfig{
			Name:       w.Name,
			LocalName:  w.Name,
			RemoteName: w.RemoteName,
			Role:       w.Role,
			Path:       w.Path,
			Host:       host,
			Port:       port,
			AESKey:     key,
			Ignore:     filter.Ignore,
			Protect:    filter.Protect,
			SSL:        ssl,
		})
	}
	return out, nil
}
