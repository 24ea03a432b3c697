package viewer

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type injectorWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w injectorWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w injectorWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// InjectScript runs handlerFunc into a buffer and, for 200 responses, appends
// the viewer config script to the document's <head>.
func InjectScript(cfg viewerScriptConfig, handlerFunc gin.HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		w := &injectorWriter{
			body:           &bytes.Buffer{},
			ResponseWriter: ctx.Writer,
		}
		ctx.Writer = w
		handlerFunc(ctx)
		ctx.Writer = w.ResponseWriter
		if w.Status() != http.StatusOK {
			_, _ = w.ResponseWriter.Write(w.body.Bytes())
			return
		}

		b := &bytes.Buffer{}
		if err := viewerScriptTemplate.Execute(b, &cfg); err != nil {
			fail(ctx, "could not execute viewer script template", err)
			return
		}

		doc, err := html.Parse(w.body)
		if err != nil {
			fail(ctx, "could not parse response body", err)
			return
		}

		if err := injectScriptIntoHead(doc, b.String()); err != nil {
			fail(ctx, "unable to inject viewer script into HTML response body", err)
			return
		}

		if err := html.Render(w.ResponseWriter, doc); err != nil {
			log.Error().Err(err).Msg("could not render modified HTML response")
		}
	}
}

func fail(ctx *gin.Context, msg string, err error) {
	log.Error().Err(err).Msg(msg)
	ctx.Writer.WriteHeader(http.StatusInternalServerError)
	_, _ = ctx.Writer.WriteString(msg)
}

func injectScriptIntoHead(doc *html.Node, content string) error {
	head := findElement(doc, atom.Head)
	if head == nil {
		return errors.New("no <head> element node found")
	}
	head.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     atom.Script.String(),
		FirstChild: &html.Node{
			Type: html.TextNode,
			Data: content,
		},
	})
	return nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
