// Package mapgen draws a printable PDF map of the scenes a player has
// visited, one pictogram per scene along a winding path.
package mapgen

import (
	"bytes"
	"errors"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"sceneplay/internal/game"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	sceneSize = 52.0
	pathStep  = 78.0
	perRow    = 6
	fontSize  = 8
	titleSize = 16
	labelSize = 7
)

// maxStops is how many visits fit on one page; older visits are dropped.
var maxStops = perRow * ((pageH - 2*margin - 90) / int(pathStep))

type stop struct {
	id      game.SceneID
	kind    string
	ending  bool
	awarded bool
}

// ErrNoGraph is returned by Generate when it is given no story graph.
var ErrNoGraph = errors.New("mapgen: no story graph")

// Generate returns PDF bytes for the story map. If visited is empty the
// current scene is the only stop.
func Generate(g *game.Graph, visited []game.SceneID, currentID game.SceneID, title string) ([]byte, error) {
	if g == nil {
		return nil, ErrNoGraph
	}
	path := visited
	if len(path) == 0 {
		path = []game.SceneID{currentID}
	}
	if len(path) > maxStops {
		path = path[len(path)-maxStops:]
	}

	stops := make([]stop, 0, len(path))
	for _, id := range path {
		st := stop{id: id, kind: game.TypeStory}
		if s, ok := g.Scene(id); ok {
			st.kind = s.Kind()
			st.ending = s.IsEnding
			st.awarded = s.AwardsWin
		}
		stops = append(stops, st)
	}

	// Snake layout: odd rows run right to left.
	positions := make([][2]float64, len(stops))
	x0 := float64(margin) + sceneSize
	y0 := float64(margin) + 90
	for i := range stops {
		row, col := i/perRow, i%perRow
		if row%2 == 1 {
			col = perRow - 1 - col
		}
		positions[i] = [2]float64{x0 + float64(col)*pathStep, y0 + float64(row)*pathStep}
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Pastel card background with a scalloped edge.
	pdf.SetFillColor(255, 246, 214)
	pdf.Rect(0, 0, pageW, pageH, "F")
	drawScallopedBorder(pdf)

	pdf.SetTextColor(90, 60, 120)
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin+10, margin+12)
	pdf.CellFormat(pageW-2*margin-20, 16, "Story Map", "", 0, "C", false, 0, "")
	if title != "" {
		pdf.SetFont("Helvetica", "", fontSize+2)
		pdf.SetXY(margin+10, margin+32)
		pdf.CellFormat(pageW-2*margin-20, 12, title, "", 0, "C", false, 0, "")
	}
	drawLegend(pdf, margin+14, margin+54)

	// Dotted pink trail between stops.
	pdf.SetDrawColor(230, 90, 150)
	pdf.SetLineWidth(2)
	pdf.SetDashPattern([]float64{2, 5}, 0)
	for i := 0; i+1 < len(positions); i++ {
		pdf.Line(positions[i][0], positions[i][1], positions[i+1][0], positions[i+1][1])
	}
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetLineWidth(1)

	last := len(stops) - 1
	for i, st := range stops {
		x, y := positions[i][0], positions[i][1]
		here := i == last && st.id == currentID
		drawStop(pdf, x, y, st, here)

		pdf.SetFont("Helvetica", "B", labelSize)
		pdf.SetTextColor(60, 40, 80)
		pdf.SetXY(x-sceneSize/2-6, y+sceneSize/2+3)
		pdf.CellFormat(sceneSize+12, 9, sceneLabel(st.id), "", 0, "C", false, 0, "")
		if here {
			pdf.SetFont("Helvetica", "I", 7)
			pdf.SetXY(x-sceneSize/2, y+sceneSize/2+12)
			pdf.CellFormat(sceneSize, 8, "You are here", "", 0, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sceneLabel turns "gift_unlocked" into "GIFT UNLOCKED", shortened to fit.
func sceneLabel(id game.SceneID) string {
	label := strings.ToUpper(strings.NewReplacer("_", " ", "-", " ").Replace(string(id)))
	if len(label) > 16 {
		label = label[:13] + "..."
	}
	return label
}

func drawScallopedBorder(pdf *gofpdf.Fpdf) {
	pdf.SetDrawColor(240, 170, 200)
	pdf.SetLineWidth(1.5)
	const r = 8.0
	for x := float64(margin); x <= pageW-margin; x += 2 * r {
		pdf.Arc(x, margin, r, r, 0, 180, 360, "D")
		pdf.Arc(x, pageH-margin, r, r, 0, 0, 180, "D")
	}
	for y := float64(margin); y <= pageH-margin; y += 2 * r {
		pdf.Arc(margin, y, r, r, 0, 90, 270, "D")
		pdf.Arc(pageW-margin, y, r, r, 0, -90, 90, "D")
	}
	pdf.SetLineWidth(1)
}

func drawLegend(pdf *gofpdf.Fpdf, x, y float64) {
	pdf.SetFont("Helvetica", "", labelSize)
	pdf.SetTextColor(60, 40, 80)
	items := []struct {
		kind  string
		label string
	}{
		{game.TypeStory, "Story"},
		{game.TypeMiniGame, "Mini-game"},
		{game.TypeVideo, "Video"},
		{game.TypeGift, "Gift"},
	}
	for i, it := range items {
		cx := x + float64(i)*90
		pdf.SetDrawColor(60, 40, 80)
		drawKind(pdf, cx+8, y+6, 8, it.kind)
		pdf.SetXY(cx+20, y+2)
		pdf.CellFormat(60, 8, it.label, "", 0, "L", false, 0, "")
	}
	pdf.SetXY(x+4*90, y+2)
	drawStar(pdf, x+4*90+4, y+6, 5)
	pdf.SetXY(x+4*90+12, y+2)
	pdf.CellFormat(60, 8, "Win", "", 0, "L", false, 0, "")
}

// drawStop draws the pictogram of one visited scene.
func drawStop(pdf *gofpdf.Fpdf, x, y float64, st stop, here bool) {
	r := sceneSize / 2.0
	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(60, 40, 80)
	pdf.SetLineWidth(1.2)
	pdf.Circle(x, y, r*0.8, "FD")
	if here {
		pdf.SetDrawColor(230, 90, 150)
		pdf.SetLineWidth(2.5)
		pdf.Circle(x, y, r*0.8+4, "D")
		pdf.SetDrawColor(60, 40, 80)
		pdf.SetLineWidth(1.2)
	}
	drawKind(pdf, x, y, r*0.45, st.kind)
	if st.ending {
		// Flag on a pole for endings.
		pdf.Line(x+r*0.55, y-r*0.2, x+r*0.55, y-r)
		pdf.SetFillColor(230, 90, 150)
		pdf.Polygon([]gofpdf.PointType{{X: x + r*0.55, Y: y - r}, {X: x + r*0.95, Y: y - r*0.85}, {X: x + r*0.55, Y: y - r*0.7}}, "FD")
	}
	if st.awarded {
		drawStar(pdf, x-r*0.6, y-r*0.6, 6)
	}
	pdf.SetLineWidth(1)
}

func drawKind(pdf *gofpdf.Fpdf, x, y, s float64, kind string) {
	switch kind {
	case game.TypeMiniGame:
		// Game pad with a d-pad and two buttons.
		pdf.RoundedRect(x-s, y-s*0.55, 2*s, 1.1*s, s*0.4, "1234", "D")
		pdf.Line(x-s*0.65, y, x-s*0.25, y)
		pdf.Line(x-s*0.45, y-s*0.2, x-s*0.45, y+s*0.2)
		pdf.Circle(x+s*0.35, y-s*0.1, s*0.1, "D")
		pdf.Circle(x+s*0.6, y+s*0.1, s*0.1, "D")
	case game.TypeVideo:
		// Film frame with a play triangle.
		pdf.Rect(x-s, y-s*0.7, 2*s, 1.4*s, "D")
		pdf.Polygon([]gofpdf.PointType{{X: x - s*0.3, Y: y - s*0.4}, {X: x + s*0.45, Y: y}, {X: x - s*0.3, Y: y + s*0.4}}, "D")
	case game.TypeGift:
		// Box with ribbon and bow.
		pdf.Rect(x-s*0.8, y-s*0.4, 1.6*s, 1.2*s, "D")
		pdf.Line(x, y-s*0.4, x, y+s*0.8)
		pdf.Line(x-s*0.8, y+s*0.1, x+s*0.8, y+s*0.1)
		pdf.Ellipse(x-s*0.25, y-s*0.6, s*0.25, s*0.15, 0, "D")
		pdf.Ellipse(x+s*0.25, y-s*0.6, s*0.25, s*0.15, 0, "D")
	default:
		// Speech bubble.
		pdf.Ellipse(x, y-s*0.1, s, s*0.65, 0, "D")
		pdf.Line(x-s*0.3, y+s*0.45, x-s*0.55, y+s*0.85)
		pdf.Line(x-s*0.55, y+s*0.85, x, y+s*0.5)
	}
}

func drawStar(pdf *gofpdf.Fpdf, cx, cy, r float64) {
	pts := make([]gofpdf.PointType, 0, 10)
	for i := 0; i < 10; i++ {
		rad := r
		if i%2 == 1 {
			rad = r * 0.45
		}
		a := float64(i)*math.Pi/5 - math.Pi/2
		pts = append(pts, gofpdf.PointType{X: cx + rad*math.Cos(a), Y: cy + rad*math.Sin(a)})
	}
	pdf.SetFillColor(255, 200, 40)
	pdf.Polygon(pts, "FD")
}
