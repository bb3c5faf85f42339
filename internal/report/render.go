// Package report renders a brand's coverage as a PDF: header, a map panel of
// styled ZIP polygons and two paged columns of available and unavailable ZIPs.
package report

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/zip-coverage/internal/domain"
	"github.com/couchcryptid/zip-coverage/internal/geo"
	"github.com/go-pdf/fpdf"
)

// Layout in points on an A4 portrait page.
const (
	margin      = 40.0
	headerY     = 46.0
	mapHeight   = 270.0
	gutter      = 24.0
	lineHeight  = 14.0
	minListRoom = 120.0
	fontFamily  = "Helvetica"
)

// Input is everything needed to render one brand report.
type Input struct {
	Brand       domain.BrandInfo
	Partition   domain.Partition
	Shapes      []*geo.Shape
	Styles      map[string]domain.Style
	GeneratedAt time.Time
	// Version identifies the data the report was built from. Reports with
	// the same brand and version are interchangeable.
	Version string
}

// Renderer turns an Input into PDF bytes.
type Renderer interface {
	Render(in Input) ([]byte, error)
}

// PDFRenderer draws reports with fpdf.
type PDFRenderer struct{}

// NewPDFRenderer returns a PDFRenderer.
func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

// Render produces the PDF document.
func (r *PDFRenderer) Render(in Input) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(in.Brand.Name+" coverage", true)
	pdf.SetCreationDate(in.GeneratedAt)
	pdf.SetModificationDate(in.GeneratedAt)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()

	y := headerY
	pdf.SetFont(fontFamily, "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(margin, y, in.Brand.Name)

	pdf.SetFont(fontFamily, "", 9)
	pdf.SetTextColor(110, 110, 110)
	stamp := "Generated " + in.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")
	pdf.Text(pageW-margin-pdf.GetStringWidth(stamp), y, stamp)
	pdf.SetTextColor(0, 0, 0)

	y += 18
	pdf.SetDrawColor(210, 210, 210)
	pdf.Line(margin, y, pageW-margin, y)
	y += 16

	if len(in.Shapes) > 0 {
		drawMap(pdf, in.Shapes, in.Styles, margin, y, pageW-2*margin, mapHeight)
		y += mapHeight + 18
	} else {
		y += 8
	}

	colW := (pageW - 2*margin - gutter) / 2
	leftX := margin
	rightX := margin + colW + gutter

	drawHeaders := func(top float64) float64 {
		pdf.SetFont(fontFamily, "B", 12)
		pdf.Text(leftX, top, "AVAILABLE")
		pdf.Text(rightX, top, "UNAVAILABLE")
		lineY := top + 10
		pdf.SetDrawColor(230, 230, 230)
		pdf.Line(leftX, lineY, leftX+colW, lineY)
		pdf.Line(rightX, lineY, rightX+colW, lineY)
		pdf.SetFont(fontFamily, "", 11)
		return lineY + 18
	}

	if y > pageH-margin-minListRoom {
		pdf.AddPage()
		y = margin
	}
	rowY := drawHeaders(y)

	avail, unavail := in.Partition.Available, in.Partition.Unavailable
	for i := 0; i < len(avail) || i < len(unavail); i++ {
		if rowY > pageH-margin {
			pdf.AddPage()
			rowY = drawHeaders(margin)
		}
		if i < len(avail) {
			pdf.Text(leftX, rowY, avail[i])
		}
		if i < len(unavail) {
			pdf.Text(rightX, rowY, unavail[i])
		}
		rowY += lineHeight
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s report: %w", in.Brand.Code, err)
	}
	return buf.Bytes(), nil
}

// drawMap projects every shape into the panel, keeping the aspect ratio of
// the shapes' extent with longitude scaled by the cosine of the mid latitude.
func drawMap(pdf *fpdf.Fpdf, shapes []*geo.Shape, styles map[string]domain.Style, x, y, w, h float64) {
	pdf.SetDrawColor(225, 225, 225)
	pdf.SetLineWidth(0.5)
	pdf.Rect(x, y, w, h, "D")

	ext := geo.Extent(shapes)
	if ext.Empty() {
		return
	}
	kx := math.Cos((ext.MinLat + ext.MaxLat) / 2 * math.Pi / 180)
	spanX := (ext.MaxLon - ext.MinLon) * kx
	spanY := ext.MaxLat - ext.MinLat
	if spanX <= 0 || spanY <= 0 {
		return
	}

	const pad = 8.0
	scale := math.Min((w-2*pad)/spanX, (h-2*pad)/spanY)
	offX := x + (w-spanX*scale)/2
	offY := y + (h-spanY*scale)/2

	project := func(p geo.Point) fpdf.PointType {
		return fpdf.PointType{
			X: offX + (p.Lon-ext.MinLon)*kx*scale,
			Y: offY + (ext.MaxLat-p.Lat)*scale,
		}
	}

	for _, s := range shapes {
		style, ok := styles[s.ZIP]
		if !ok {
			style = domain.NeutralStyle
		}
		for _, poly := range s.Polygons {
			drawPolygon(pdf, poly, style, project)
		}
	}
	pdf.SetAlpha(1, "Normal")
	pdf.SetLineWidth(1)
}

func drawPolygon(pdf *fpdf.Fpdf, poly geo.Polygon, style domain.Style, project func(geo.Point) fpdf.PointType) {
	if len(poly.Rings) == 0 || len(poly.Rings[0]) < 3 {
		return
	}
	ring := func(pts []geo.Point) []fpdf.PointType {
		out := make([]fpdf.PointType, len(pts))
		for i, p := range pts {
			out[i] = project(p)
		}
		return out
	}

	if style.FillColor != "" && style.FillOpacity > 0 {
		r, g, b := parseHexColor(style.FillColor)
		pdf.SetFillColor(r, g, b)
		pdf.SetAlpha(style.FillOpacity, "Normal")
		pdf.Polygon(ring(poly.Rings[0]), "F")
		pdf.SetFillColor(255, 255, 255)
		pdf.SetAlpha(1, "Normal")
		for _, hole := range poly.Rings[1:] {
			if len(hole) >= 3 {
				pdf.Polygon(ring(hole), "F")
			}
		}
	}

	r, g, b := parseHexColor(style.Color)
	pdf.SetDrawColor(r, g, b)
	pdf.SetLineWidth(float64(style.Weight) * 0.5)
	for _, rr := range poly.Rings {
		if len(rr) >= 3 {
			pdf.Polygon(ring(rr), "D")
		}
	}
}

// parseHexColor accepts #rgb and #rrggbb. Anything else is mid grey.
func parseHexColor(s string) (int, int, int) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return 136, 136, 136
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 136, 136, 136
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// FileName is the download name for a brand's report, e.g.
// "the-cleaning-authority-columbus-report.pdf".
func FileName(brandName string) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(brandName), "-"), "-")
	return slug + "-columbus-report.pdf"
}
