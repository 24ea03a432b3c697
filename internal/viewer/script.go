package viewer

import "html/template"

type viewerScriptConfig struct {
	WSPort uint
	WSPath string
}

// The viewer reads window.PCVIEWER before opening its socket.
const viewerScript = `
  window.PCVIEWER = {
    wsPort: {{.WSPort}},
    wsPath: "{{.WSPath}}",
  };
`

var viewerScriptTemplate = template.Must(template.New("viewerScript").Parse(viewerScript))
