package scaffold

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindTIN, ParseKind("TIN"))
	assert.Equal(t, KindTIN, ParseKind(" tin "))
	assert.Equal(t, KindModel, ParseKind("Model"))
	assert.Equal(t, KindModel, ParseKind(""))
	assert.Equal(t, KindModel, ParseKind("Trimesh"))
}

func TestOpen_Model(t *testing.T) {
	lines := Open(KindModel, `C:\work\Project`, "M1")

	assert.Equal(t, `<?xml version="1.0"?>`, lines[0])
	assert.Contains(t, lines[1], `date="2023-10-13" time="08:35:06"`)
	assert.Contains(t, lines, `      <project_folder>C:\work\Project</project_folder>`)
	assert.Contains(t, lines, "      <export_file_name>M1 Chain.chain</export_file_name>")
	assert.Contains(t, lines, "      <project_name>Master</project_name>")
	assert.Equal(t, "    <Commands>", lines[len(lines)-1])
}

func TestOpen_TIN(t *testing.T) {
	lines := Open(KindTIN, "", "M1")

	assert.Contains(t, lines[1], `date="2024-01-16" time="20:57:27"`)
	assert.Contains(t, lines, "      <export_date_gmt>2024-01-16T09:57:27Z</export_date_gmt>")
	assert.Contains(t, lines, "      <project_name>Project</project_name>")
}

func TestOpen_UnknownKindFallsBackToModel(t *testing.T) {
	assert.Equal(t, Open(KindModel, "p", "m"), Open(Kind("other"), "p", "m"))
}

func TestWrap_WellFormed(t *testing.T) {
	for _, kind := range []Kind{KindModel, KindTIN} {
		t.Run(string(kind), func(t *testing.T) {
			lines := Wrap(kind, `C:\work`, "M1", []string{
				"      <Comment>",
				"        <Name>hello</Name>",
				"      </Comment>",
			})
			doc := strings.Join(lines, "\n")

			dec := xml.NewDecoder(strings.NewReader(doc))
			for {
				_, err := dec.Token()
				if err != nil {
					require.ErrorIs(t, err, io.EOF)
					break
				}
			}
			assert.True(t, strings.HasSuffix(doc, "</xml12d>"))
		})
	}
}
