package viewer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JackWithOneEye/pcviewer/internal/database"
	"github.com/a-h/templ"
)

const journalHead = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>pcviewer sessions</title>
  <style>
    body { font-family: monospace; background: #111; color: #ddd; }
    table { border-collapse: collapse; }
    th, td { padding: 2px 12px; text-align: left; border-bottom: 1px solid #333; }
  </style>
</head>
<body>
<h1>Sessions</h1>
<table>
<tr><th>id</th><th>remote</th><th>connected</th><th>duration</th><th>frames</th><th>commands</th></tr>
`

const journalFoot = `</table>
</body>
</html>
`

// journalPage renders the most recent sessions as an HTML table.
func journalPage(recs []database.SessionRecord) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, journalHead); err != nil {
			return err
		}
		for _, r := range recs {
			_, err := fmt.Fprintf(w, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>\n",
				templ.EscapeString(r.ID),
				templ.EscapeString(r.RemoteAddr),
				r.ConnectedAt.Format(time.RFC3339),
				r.DisconnectedAt.Sub(r.ConnectedAt).Round(time.Millisecond),
				r.FramesServed,
				r.Commands)
			if err != nil {
				return err
			}
		}
		if len(recs) == 0 {
			if _, err := io.WriteString(w, "<tr><td colspan=\"6\">no sessions yet</td></tr>\n"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, journalFoot)
		return err
	})
}
