package httpserver

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"github.com/xuri/excelize/v2"

	"github.com/velez/storefront/internal/domain"
)

// adminExportXLSX streams the whole catalog as a spreadsheet.
func (s *Server) adminExportXLSX(w http.ResponseWriter, r *http.Request) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Products"
	f.SetSheetName("Sheet1", sheet)
	headers := []string{"ID", "Title", "Description", "Price", "Stock", "Views", "VariantGroup"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	page := 1
	for {
		list, total, err := s.products.List(r.Context(), domain.ProductFilter{Page: page, PageSize: 200})
		if err != nil || len(list) == 0 {
			break
		}
		for _, p := range list {
			group := ""
			if p.VariantGroup != nil {
				group = p.VariantGroup.String()
			}
			values := []any{p.ID.String(), p.Title, p.Description, p.Price, p.Stock, p.Views, group}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			row++
		}
		if page*200 >= int(total) {
			break
		}
		page++
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=products.xlsx")
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("xlsx export")
	}
}

type importRow struct {
	Title       string
	Description string
	Price       float64
	Stock       int
}

// adminImportCSV bulk-creates products from a CSV upload with columns
// title,description,price,stock. When OPENAI_API_KEY is set, rows missing
// a description get one generated before insert.
func (s *Server) adminImportCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "multipart form required", nil)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid request", map[string]string{"file": "required"})
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	var rows []importRow
	first := true
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.writeErr(w, r, http.StatusBadRequest, "malformed csv", nil)
			return
		}
		if first {
			first = false
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "title") {
				continue
			}
		}
		if len(rec) < 4 {
			continue
		}
		title := strings.TrimSpace(rec[0])
		if title == "" {
			continue
		}
		price, _ := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		stock, _ := strconv.Atoi(strings.TrimSpace(rec[3]))
		rows = append(rows, importRow{Title: title, Description: strings.TrimSpace(rec[1]), Price: price, Stock: stock})
	}
	if len(rows) == 0 {
		s.writeErr(w, r, http.StatusBadRequest, "no importable rows", nil)
		return
	}

	if s.openaiKey != "" {
		if err := s.fillDescriptionsWithOpenAI(r.Context(), rows); err != nil {
			log.Warn().Err(err).Msg("description generation skipped")
		}
	}

	created := 0
	errorsMap := map[string]string{}
	for _, row := range rows {
		p := &domain.Product{Title: row.Title, Description: row.Description, Price: row.Price, Stock: row.Stock}
		if err := s.products.Create(r.Context(), p); err != nil {
			errorsMap[row.Title] = err.Error()
			continue
		}
		created++
	}
	writeData(w, http.StatusOK, map[string]any{"created": created, "errors": errorsMap})
}

// fillDescriptionsWithOpenAI asks the model for short descriptions for
// rows that have none, in a single JSON-only completion.
func (s *Server) fillDescriptionsWithOpenAI(ctx context.Context, rows []importRow) error {
	missing := []string{}
	for _, r := range rows {
		if r.Description == "" {
			missing = append(missing, r.Title)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	prompt := fmt.Sprintf(`Write a one-sentence store description for each product.

PRODUCTS:
%s

Return JSON only: {"products":[{"title":"...","description":"..."}]}`, strings.Join(missing, "\n"))

	reqCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	client := openai.NewClient(s.openaiKey)
	resp, err := client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: "gpt-4o-mini",
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You write terse product copy. Always return valid JSON."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("empty completion")
	}
	var out struct {
		Products []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"products"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return err
	}
	byTitle := map[string]string{}
	for _, p := range out.Products {
		byTitle[strings.ToLower(p.Title)] = p.Description
	}
	for i := range rows {
		if rows[i].Description == "" {
			if d, ok := byTitle[strings.ToLower(rows[i].Title)]; ok {
				rows[i].Description = d
			}
		}
	}
	return nil
}
