package notifications

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/Kariqs/amexan-storefront/models"
	"github.com/Kariqs/amexan-storefront/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Config struct {
	AppName     string
	SenderEmail string
	FrontendURL string
}

// Dispatcher renders and sends the order emails.
type Dispatcher struct {
	mailer utils.Mailer
	cfg    Config
}

func NewDispatcher(mailer utils.Mailer, cfg Config) *Dispatcher {
	return &Dispatcher{mailer: mailer, cfg: cfg}
}

type lineView struct {
	Name  string
	Qty   int
	Price string
}

type orderView struct {
	OrderID       uint
	CustomerName  string
	CustomerEmail string
	PaymentMethod string
	IsPaid        bool
	PaidAt        string
	Items         []lineView
	ItemsPrice    string
	ShippingPrice string
	TaxPrice      string
	TotalPrice    string
	Address       models.ShippingAddress
	OrderURL      string
}

func (d *Dispatcher) view(order *models.Order) orderView {
	v := orderView{
		OrderID:       order.ID,
		CustomerName:  order.User.Name,
		CustomerEmail: order.User.Email,
		PaymentMethod: order.PaymentMethod,
		IsPaid:        order.IsPaid,
		ItemsPrice:    order.ItemsPrice.StringFixed(2),
		ShippingPrice: order.ShippingPrice.StringFixed(2),
		TaxPrice:      order.TaxPrice.StringFixed(2),
		TotalPrice:    order.TotalPrice.StringFixed(2),
		Address:       order.ShippingAddress.Data(),
		OrderURL:      fmt.Sprintf("%s/order/%d", d.cfg.FrontendURL, order.ID),
	}
	if order.PaidAt != nil {
		v.PaidAt = order.PaidAt.Format("Jan 2, 2006 15:04")
	}
	for _, item := range order.OrderItems {
		v.Items = append(v.Items, lineView{Name: item.Name, Qty: item.Qty, Price: item.Price.StringFixed(2)})
	}
	return v
}

func (d *Dispatcher) render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

func (d *Dispatcher) from() string {
	return fmt.Sprintf("%s <%s>", d.cfg.AppName, d.cfg.SenderEmail)
}

// SendPurchaseReceipt mails the paid order to its owner.
func (d *Dispatcher) SendPurchaseReceipt(ctx context.Context, order *models.Order) error {
	if order.User.Email == "" {
		return errors.New("order owner has no email address")
	}
	html, err := d.render("purchase_receipt.html", d.view(order))
	if err != nil {
		return err
	}
	return d.mailer.Send(ctx, utils.Email{
		From:    d.from(),
		To:      []string{order.User.Email},
		Subject: fmt.Sprintf("Order Confirmation %d", order.ID),
		HTML:    html,
	})
}

// SendNewOrderNotification tells the sales recipients a new order exists.
func (d *Dispatcher) SendNewOrderNotification(ctx context.Context, order *models.Order, recipients []string) error {
	if len(recipients) == 0 {
		return nil
	}
	html, err := d.render("new_order.html", d.view(order))
	if err != nil {
		return err
	}
	return d.mailer.Send(ctx, utils.Email{
		From:    d.from(),
		To:      recipients,
		Subject: fmt.Sprintf("New order pending - #%d", order.ID),
		HTML:    html,
	})
}
