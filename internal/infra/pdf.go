package infra

// pdf.go — order receipt generation using go-pdf/fpdf.
// Receipt layout: store header, order number and date, item table
// (product, quantity, unit price, subtotal), total and payment method.
// Rendered in memory; the handler streams the bytes.

import (
	"bytes"
	"fmt"

	"lojaesportiva/internal/model"

	"github.com/go-pdf/fpdf"
)

const nomeLoja = "Loja Esportiva"

// GerarReciboPDF renders a receipt for an order loaded with its items
// (and their products) and payment.
func GerarReciboPDF(p *model.Pedido) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("pdf: pedido nil")
	}

	// A6 portrait, wide enough for four columns.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 105, Ht: 148},
	})
	pdf.SetMargins(6, 6, 6)
	pdf.SetAutoPageBreak(true, 8)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 12

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(nomeLoja), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr("Comprovante de Pedido"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Pedido Nº %d", p.ID)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, p.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Status: "+p.Status), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.Line(6, pdf.GetY(), pageW-6, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.44
	col2 := contentW * 0.12
	col3 := contentW * 0.22
	col4 := contentW * 0.22

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Produto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qtd", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, tr("Preço"), "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range p.Itens {
		nome := fmt.Sprintf("#%d", item.ProdutoID)
		if item.Produto != nil {
			nome = item.Produto.Nome
		}
		if r := []rune(nome); len(r) > 28 {
			nome = string(r[:27]) + "..."
		}
		pdf.CellFormat(col1, 5, tr(nome), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("%d", item.Quantidade), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "R$ "+item.PrecoUnitario.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "R$ "+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(6, pdf.GetY(), pageW-6, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2+col3, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "R$ "+p.ValorTotal.StringFixed(2), "", 1, "R", false, 0, "")

	if p.Pagamento != nil {
		pdf.SetFont("Helvetica", "", 7)
		label := fmt.Sprintf("Pagamento (%s) - %s", p.Pagamento.FormaPagamento, p.Pagamento.Status)
		pdf.CellFormat(col1+col2+col3, 4, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 4, "R$ "+p.Pagamento.ValorPago.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("Obrigado pela preferência!"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
