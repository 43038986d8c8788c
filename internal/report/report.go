// Package report renders the result certificate as a one-page PDF.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/jwebster45206/word-dungeon/pkg/boss"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

// ErrNotFinished is returned for sessions that have not reached the result
// screen.
var ErrNotFinished = errors.New("session has no result yet")

const utf8Family = "certificate"

// Certificate is what the report shows.
type Certificate struct {
	Name     string
	Genre    story.Genre
	Words    []string
	Chapters int
	Result   boss.Result
	IssuedAt time.Time
}

// FromGameState builds a certificate from a finished session.
func FromGameState(gs *state.GameState) (Certificate, error) {
	if gs == nil || gs.Phase != state.PhaseResult || gs.Input == nil {
		return Certificate{}, ErrNotFinished
	}
	return Certificate{
		Name:     gs.Input.Name,
		Genre:    gs.Input.Genre,
		Words:    append([]string(nil), gs.Input.Words...),
		Chapters: gs.Chapter,
		Result:   gs.Result(),
		IssuedAt: gs.UpdatedAt,
	}, nil
}

// Renderer draws certificates. With a UTF-8 TrueType font the labels are
// Korean; without one the core Helvetica font is used, which cannot draw
// Hangul, so labels are English and other unsupported characters print
// as '?'.
type Renderer struct {
	fontPath string
}

// NewRenderer creates a renderer. fontPath may be empty.
func NewRenderer(fontPath string) *Renderer {
	return &Renderer{fontPath: fontPath}
}

// UTF8 reports whether a Unicode font is configured.
func (r *Renderer) UTF8() bool { return r.fontPath != "" }

type labels struct {
	title, name, genre, grade, score, chapters, words, issued string
}

var (
	koreanLabels = labels{
		title:    "단어 던전 모험 인증서",
		name:     "모험가",
		genre:    "장르",
		grade:    "등급",
		score:    "점수",
		chapters: "탐험한 장",
		words:    "배운 단어",
		issued:   "발급일",
	}
	englishMessages = map[boss.Grade]string{
		boss.GradeS: "A legendary hero is born!",
		boss.GradeA: "A great adventure!",
		boss.GradeB: "Good effort!",
		boss.GradeC: "Keep training, adventurer!",
	}
	englishLabels = labels{
		title:    "Word Dungeon Certificate",
		name:     "Adventurer",
		genre:    "Genre",
		grade:    "Grade",
		score:    "Score",
		chapters: "Chapters",
		words:    "Words learned",
		issued:   "Issued",
	}
)

// Render writes the certificate PDF to w.
func (r *Renderer) Render(w io.Writer, c Certificate) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Word Dungeon", true)
	pdf.SetAuthor("Word Dungeon", true)

	family := "Helvetica"
	l := englishLabels
	text := latin1
	genre := string(c.Genre)
	message := englishMessages[c.Result.Grade]
	if r.UTF8() {
		genre = c.Genre.Label()
		message = c.Result.Message
		pdf.AddUTF8Font(utf8Family, "", r.fontPath)
		family = utf8Family
		l = koreanLabels
		text = func(s string) string { return s }
	}

	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right

	pdf.SetDrawColor(120, 90, 200)
	pdf.SetLineWidth(1.5)
	pdf.Rect(10, 10, pageW-20, 120, "D")

	pdf.SetFont(family, "", 24)
	pdf.SetY(22)
	pdf.CellFormat(width, 14, text(l.title), "", 1, "C", false, 0, "")

	pdf.SetFont(family, "", 48)
	pdf.SetTextColor(200, 80, 80)
	pdf.CellFormat(width, 26, string(c.Result.Grade), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont(family, "", 14)
	rows := [][2]string{
		{l.name, c.Name},
		{l.genre, genre},
		{l.grade, fmt.Sprintf("%s (%s)", c.Result.Grade, strings.Repeat("*", c.Result.Stars))},
		{l.score, fmt.Sprintf("%d / %d (%.0f%%)", c.Result.Score, c.Result.Total, c.Result.Percentage)},
		{l.chapters, fmt.Sprintf("%d", c.Chapters)},
		{l.words, strings.Join(c.Words, ", ")},
		{l.issued, c.IssuedAt.Format("2006-01-02")},
	}
	for _, row := range rows {
		pdf.CellFormat(50, 9, text(row[0]), "", 0, "R", false, 0, "")
		pdf.CellFormat(5, 9, "", "", 0, "", false, 0, "")
		pdf.CellFormat(width-55, 9, text(row[1]), "", 1, "L", false, 0, "")
	}

	if message != "" {
		pdf.Ln(4)
		pdf.SetFont(family, "", 12)
		pdf.MultiCell(width, 7, text(message), "", "C", false)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render certificate: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}
	return nil
}

// latin1 keeps what the core fonts can draw and replaces the rest.
func latin1(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r > 0xFF {
			r = '?'
		}
		b.WriteByte(byte(r))
	}
	return b.String()
}
