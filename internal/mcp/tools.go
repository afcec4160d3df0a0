package mcp

type toolSchema struct {
	Type       string              `json:"type"`
	Properties map[string]property `json:"properties"`
	Required   []string            `json:"required"`
}

type property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

type tool struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema toolSchema `json:"inputSchema"`
}

func noArgs() toolSchema {
	return toolSchema{Type: "object", Properties: map[string]property{}, Required: []string{}}
}

var toolCatalog = []tool{
	{
		Name:        "bridge_status",
		Description: "Report the host application state: version, project name, play mode, and whether a compile is in progress.",
		InputSchema: noArgs(),
	},
	{
		Name:        "bridge_refresh",
		Description: "Queue an asset database rescan so the host picks up files changed outside of it. Call this after editing project files on disk.",
		InputSchema: noArgs(),
	},
	{
		Name:        "bridge_logs",
		Description: "Fetch recent console diagnostics from the host, optionally filtered by severity.",
		InputSchema: toolSchema{
			Type: "object",
			Properties: map[string]property{
				"count": {
					Type:        "integer",
					Description: "Number of entries to fetch (default: 50)",
					Default:     50,
				},
				"level": {
					Type:        "string",
					Description: "Severity to filter by",
					Enum:        []string{"error", "warning", "log"},
				},
			},
			Required: []string{},
		},
	},
	{
		Name:        "bridge_clear_logs",
		Description: "Empty the host diagnostic buffer.",
		InputSchema: noArgs(),
	},
	{
		Name:        "bridge_compile_status",
		Description: "Report whether the host is compiling and list any compile errors from the last cycle.",
		InputSchema: noArgs(),
	},
	{
		Name:        "bridge_play",
		Description: "Enter play mode in the host.",
		InputSchema: noArgs(),
	},
	{
		Name:        "bridge_stop",
		Description: "Exit play mode in the host.",
		InputSchema: noArgs(),
	},
	{
		Name:        "bridge_pause",
		Description: "Toggle the play-mode pause state.",
		InputSchema: noArgs(),
	},
	{
		Name:        "bridge_ping",
		Description: "Highlight and select an asset in the host. Useful for pointing the user at the result of an edit.",
		InputSchema: toolSchema{
			Type: "object",
			Properties: map[string]property{
				"path": {
					Type:        "string",
					Description: "Asset path, e.g. 'Assets/Prefabs/Player.prefab'",
				},
			},
			Required: []string{"path"},
		},
	},
	{
		Name:        "bridge_selection",
		Description: "List the assets currently selected in the host.",
		InputSchema: noArgs(),
	},
	{
		Name:        "bridge_project_path",
		Description: "Report the host project and asset directory paths.",
		InputSchema: noArgs(),
	},
	{
		Name:        "bridge_current_scene",
		Description: "Report the scene currently open in the host.",
		InputSchema: noArgs(),
	},
}
