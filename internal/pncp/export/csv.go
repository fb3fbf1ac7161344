package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/farxc/pncp_wrapper/internal/pncp/types"
)

// Encoding is the character set of an exported file.
type Encoding string

const (
	UTF8 Encoding = "utf-8"
	// Windows1252 is what spreadsheet tools on Brazilian desktops open
	// without an import wizard.
	Windows1252 Encoding = "windows-1252"
)

func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "windows-1252", "cp1252", "latin1":
		return Windows1252, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", s)
	}
}

// Columns lists the exported columns in order.
var Columns = []string{
	"controlNumber",
	"modalityCode",
	"modalityName",
	"objectDescription",
	"issuingBody",
	"state",
	"municipality",
	"estimatedValue",
	"inclusionDate",
	"pncpPublicationDate",
	"lastUpdateDate",
	"proposalOpeningDate",
	"proposalClosingDate",
	"linkToNoticeDocument",
}

// Frame lays the records out as a dataframe, one row per record, keeping
// their order.
func Frame(records []types.Record) dataframe.DataFrame {
	n := len(records)
	text := make(map[string][]string, len(Columns))
	for _, col := range Columns {
		text[col] = make([]string, n)
	}
	codes := make([]int, n)

	for i, r := range records {
		codes[i] = r.ModalityCode
		text["controlNumber"][i] = r.ControlNumber
		text["modalityName"][i] = r.ModalityName
		text["objectDescription"][i] = r.ObjectDescription
		text["issuingBody"][i] = r.IssuingBody.Name
		text["state"][i] = r.IssuingBody.State
		text["municipality"][i] = r.IssuingBody.Municipality
		text["estimatedValue"][i] = r.EstimatedValue.StringFixed(2)
		text["inclusionDate"][i] = r.InclusionDate
		text["pncpPublicationDate"][i] = r.PncpPublicationDate
		text["lastUpdateDate"][i] = r.LastUpdateDate
		text["proposalOpeningDate"][i] = r.ProposalOpeningDate
		text["proposalClosingDate"][i] = r.ProposalClosingDate
		text["linkToNoticeDocument"][i] = r.LinkToNoticeDocument
	}

	cols := make([]series.Series, 0, len(Columns))
	for _, col := range Columns {
		if col == "modalityCode" {
			cols = append(cols, series.New(codes, series.Int, col))
			continue
		}
		cols = append(cols, series.New(text[col], series.String, col))
	}
	return dataframe.New(cols...)
}

// WriteCSV writes records as CSV with a header row. Characters the target
// encoding cannot represent are replaced rather than failing the export.
func WriteCSV(w io.Writer, records []types.Record, enc Encoding) error {
	df := Frame(records)
	if df.Err != nil {
		return fmt.Errorf("failed to build export frame: %w", df.Err)
	}

	if enc != Windows1252 {
		return df.WriteCSV(w)
	}

	encoded := transform.NewWriter(w, encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()))
	if err := df.WriteCSV(encoded); err != nil {
		encoded.Close()
		return err
	}
	return encoded.Close()
}
