package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleOrderText renders a printable plain-text quote from the stored
// snapshot, for email or a receipt printer.
func (s *server) handleOrderText(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	detail, err := s.getOrderDetail(id)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to load order", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, renderQuoteText(detail))
}

func renderQuoteText(detail orderDetail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Oak & Arrow Framing — Quote #%d\n", detail.ID)
	fmt.Fprintf(&b, "Date: %s\n", detail.CreatedAt)
	fmt.Fprintf(&b, "Customer: %s\n", detail.CustomerName)
	if detail.Description != "" {
		fmt.Fprintf(&b, "Artwork: %s\n", detail.Description)
	}
	fmt.Fprintf(&b, "Size: %s, %.2g in mat border (%.0f united inches)\n",
		detail.Dimensions, detail.MatWidth, detail.Breakdown.UnitedInches)
	b.WriteString("\n")

	b.WriteString("Line items:\n")
	if detail.FrameName != "" {
		fmt.Fprintf(&b, "  Frame (%s): %.2f\n", detail.FrameName, detail.Breakdown.FramePrice)
	}
	if detail.MatName != "" {
		fmt.Fprintf(&b, "  Mat (%s): %.2f\n", detail.MatName, detail.Breakdown.MatPrice)
	}
	if detail.GlazingName != "" {
		fmt.Fprintf(&b, "  Glazing (%s): %.2f\n", detail.GlazingName, detail.Breakdown.GlazingPrice)
	}
	fmt.Fprintf(&b, "  Labor: %.2f\n", detail.Breakdown.LaborCost)
	fmt.Fprintf(&b, "  Overhead: %.2f\n", detail.Breakdown.OverheadCost)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Subtotal: %.2f\n", detail.Breakdown.Subtotal)
	if detail.Breakdown.DiscountAmount != 0 {
		fmt.Fprintf(&b, "Discount (%.2g%%): -%.2f\n", detail.DiscountPercent, detail.Breakdown.DiscountAmount)
	}
	fmt.Fprintf(&b, "Tax (%.4g%%): %.2f\n", detail.TaxPercent, detail.Breakdown.TaxAmount)
	fmt.Fprintf(&b, "Total: %.2f\n", detail.Breakdown.Total)
	if detail.Deposit != 0 {
		fmt.Fprintf(&b, "Deposit: %.2f\n", detail.Deposit)
		fmt.Fprintf(&b, "Balance due: %.2f\n", detail.BalanceDue)
	}

	return b.String()
}
