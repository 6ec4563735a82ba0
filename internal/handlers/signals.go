package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

// dashboardSignals mirrors the signal set declared on the page.
type dashboardSignals struct {
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Categories []string `json:"categories"`
	Cities     []string `json:"cities"`

	TablePage   int    `json:"tablePage"`
	TableSort   string `json:"tableSort"`
	TableDesc   bool   `json:"tableDesc"`
	TableSearch string `json:"tableSearch"`

	ProductID       flexNumber `json:"productId"`
	ProductName     string     `json:"productName"`
	ProductCategory string     `json:"productCategory"`
	ProductPrice    flexNumber `json:"productPrice"`

	ClientID    flexNumber `json:"clientId"`
	ClientName  string     `json:"clientName"`
	ClientEmail string     `json:"clientEmail"`
	ClientCity  string     `json:"clientCity"`
}

// flexNumber accepts a JSON number or a numeric string; bound inputs send
// either depending on how the signal was first declared.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = flexNumber(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = flexNumber(f)
	return nil
}

func (n flexNumber) ID() uint {
	if n <= 0 {
		return 0
	}
	return uint(n)
}

func readSignals(r *http.Request) (dashboardSignals, error) {
	var sig dashboardSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		return dashboardSignals{}, apperrors.BadRequestWrap(err, "invalid signals")
	}
	return sig, nil
}

func (s dashboardSignals) filter() (services.Filter, error) {
	return services.ParseFilter(s.Start, s.End, s.Categories, s.Cities)
}

func (s dashboardSignals) tableQuery() services.TableQuery {
	return services.TableQuery{
		Page:   s.TablePage,
		SortBy: s.TableSort,
		Desc:   s.TableDesc,
		Search: s.TableSearch,
	}
}

func (s dashboardSignals) product() models.Product {
	return models.Product{
		Name:      s.ProductName,
		Category:  s.ProductCategory,
		UnitPrice: float64(s.ProductPrice),
	}
}

func (s dashboardSignals) client() models.Client {
	return models.Client{
		Name:  s.ClientName,
		Email: s.ClientEmail,
		City:  s.ClientCity,
	}
}

func emptyProductForm() map[string]any {
	return map[string]any{
		"productId":       0,
		"productName":     "",
		"productCategory": models.Categories[0],
		"productPrice":    "",
	}
}

func emptyClientForm() map[string]any {
	return map[string]any{
		"clientId":    0,
		"clientName":  "",
		"clientEmail": "",
		"clientCity":  "",
	}
}
