package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	config "github.com/apicalbio/shopify_backend/configs"
	"github.com/apicalbio/shopify_backend/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

type labelItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type labelPage struct {
	OrderReference string
	CustomerName   string
	CustomerEmail  string
	Items          []labelItem
	GeneratedAt    string
}

// GenerateSampleLabels renders the order's sample-label sheet as a PDF.
func GenerateSampleLabels(order *models.Order) ([]byte, error) {
	htmlData, err := renderLabelHTML([]labelPage{labelPageFor(order)})
	if err != nil {
		return nil, fmt.Errorf("failed to render label template: %w", err)
	}
	return generatePDFFromHTML(htmlData)
}

// GenerateBatchLabels renders one PDF containing the label sheets of
// every given order, one order per page.
func GenerateBatchLabels(orders []models.Order) ([]byte, error) {
	pages := make([]labelPage, 0, len(orders))
	for i := range orders {
		pages = append(pages, labelPageFor(&orders[i]))
	}

	htmlData, err := renderLabelHTML(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to render batch label template: %w", err)
	}
	return generatePDFFromHTML(htmlData)
}

func labelPageFor(order *models.Order) labelPage {
	p := labelPage{
		OrderReference: order.OrderReference,
		CustomerName:   order.CustomerName,
		CustomerEmail:  order.CustomerEmail,
		GeneratedAt:    time.Now().Format("January 2, 2006"),
	}

	if len(order.OrderData) > 0 {
		var data struct {
			Items []labelItem `json:"items"`
		}
		// Malformed order_data just yields a sheet without item rows.
		_ = json.Unmarshal(order.OrderData, &data)
		p.Items = data.Items
	}
	return p
}

func renderLabelHTML(pages []labelPage) (string, error) {
	tmpl, err := template.ParseFiles("templates/labels.html")
	if err != nil {
		return "", err
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, struct{ Pages []labelPage }{Pages: pages}); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

// UploadLabelsPDF hosts a generated sheet and returns its public URL.
func UploadLabelsPDF(fileBytes []byte, orderReference string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("sample_labels/%s_%s", orderReference, uuid.New().String()),
		Folder:       "shopify_order_labels",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
