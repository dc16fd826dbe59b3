package handler

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storepay/internal/payment"
)

// CheckoutPageHandler serves the buyer-facing checkout form.
type CheckoutPageHandler struct {
	catalog    payment.Catalog
	scriptURL  string
	configured bool
	logger     *zap.Logger
}

// NewCheckoutPageHandler creates the checkout page handler. configured
// reports whether gateway credentials are present.
func NewCheckoutPageHandler(catalog payment.Catalog, scriptURL string, configured bool, logger *zap.Logger) *CheckoutPageHandler {
	return &CheckoutPageHandler{
		catalog:    catalog,
		scriptURL:  scriptURL,
		configured: configured,
		logger:     logger,
	}
}

type checkoutView struct {
	ProductID  string
	Title      string
	Price      string
	InStock    bool
	Configured bool
	ScriptURL  string
}

// Show renders the checkout page for one product.
// GET /checkout/:productId
func (h *CheckoutPageHandler) Show(c echo.Context) error {
	product, err := h.catalog.FindProduct(c.Request().Context(), c.Param("productId"))
	if err != nil || !product.IsPublished() {
		if err != nil && !errors.Is(err, payment.ErrNotFound) {
			h.logger.Error("checkout product lookup failed", zap.Error(err))
			return c.String(http.StatusInternalServerError, "Internal server error")
		}
		return c.String(http.StatusNotFound, "Product not found")
	}

	view := checkoutView{
		ProductID:  product.ID,
		Title:      product.Title,
		Price:      product.Price().Major() + " " + product.Currency,
		InStock:    product.IsInStock,
		Configured: h.configured,
		ScriptURL:  h.scriptURL,
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return checkoutTemplate.Execute(c.Response().Writer, view)
}

var checkoutTemplate = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Checkout: {{.Title}}</title>
    <style>
        body { font-family: -apple-system, Helvetica, Arial, sans-serif; background: #f2f2f2; margin: 0; padding: 20px; display: flex; justify-content: center; }
        .box { background: #fff; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); padding: 32px; max-width: 420px; width: 100%; }
        label { display: block; margin-top: 12px; color: #333; }
        input { width: 100%; padding: 8px; box-sizing: border-box; }
        button { margin-top: 20px; width: 100%; padding: 10px; }
        .error { color: #cf222e; min-height: 1.2em; }
    </style>
</head>
<body>
<div class="box">
    <h1>{{.Title}}</h1>
    <p>{{.Price}}</p>
    {{if not .InStock}}<p class="error">This item is out of stock.</p>{{end}}
    {{if not .Configured}}<p class="error">Payments are temporarily unavailable.</p>{{end}}
    <form id="checkout-form" novalidate>
        <label>Name <input id="name" name="name" autocomplete="name" required></label>
        <label>Email <input id="email" name="email" type="email" autocomplete="email" required></label>
        <label>Phone <input id="phone" name="phone" type="tel" autocomplete="tel"></label>
        <button id="pay" type="submit" disabled>Pay now</button>
        <p id="error" class="error"></p>
    </form>
</div>
<script>
(function () {
    var productId = {{.ProductID}};
    var scriptURL = {{.ScriptURL}};
    var available = {{.Configured}} && {{.InStock}};
    var scriptId = "flw-checkout-script";

    var form = document.getElementById("checkout-form");
    var button = document.getElementById("pay");
    var errorBox = document.getElementById("error");
    var fields = {
        name: document.getElementById("name"),
        email: document.getElementById("email"),
        phone: document.getElementById("phone")
    };

    var scriptReady = false;
    var inFlight = false;

    function valid() {
        return fields.name.value.trim() !== "" && fields.email.value.trim() !== "";
    }

    function refresh() {
        button.disabled = !(available && scriptReady && valid() && !inFlight);
    }

    function setBusy(busy) {
        inFlight = busy;
        Object.keys(fields).forEach(function (k) { fields[k].disabled = busy; });
        refresh();
    }

    function loadScript() {
        if (typeof window.FlutterwaveCheckout === "function") {
            scriptReady = true;
            refresh();
            return;
        }
        var existing = document.getElementById(scriptId) ||
            document.querySelector('script[src="' + scriptURL + '"]');
        if (existing) {
            existing.addEventListener("load", function () { scriptReady = true; refresh(); });
            return;
        }
        var s = document.createElement("script");
        s.id = scriptId;
        s.src = scriptURL;
        s.async = true;
        s.onload = function () { scriptReady = true; refresh(); };
        s.onerror = function () { errorBox.textContent = "Could not load the payment widget."; };
        document.head.appendChild(s);
    }

    function postJSON(url, body) {
        return fetch(url, {
            method: "POST",
            headers: { "Content-Type": "application/json" },
            body: JSON.stringify(body)
        }).then(function (res) {
            return res.json().then(function (data) {
                if (!res.ok) { throw new Error(data.message || "Request failed"); }
                return data;
            });
        });
    }

    function fail(txRef, transactionId, reason) {
        var q = new URLSearchParams();
        if (txRef) { q.set("tx_ref", txRef); }
        if (transactionId) { q.set("transaction_id", String(transactionId)); }
        if (reason) { q.set("reason", reason); }
        window.location.assign("/payment/failed?" + q.toString());
    }

    function confirm(response) {
        postJSON("/payments/confirm", {
            transaction_id: String(response.transaction_id || ""),
            tx_ref: response.tx_ref || ""
        }).then(function (res) {
            var outcome = res.data || {};
            if (outcome.state === "VERIFIED_SUCCESS") {
                var q = new URLSearchParams({ tx_ref: outcome.tx_ref, transaction_id: outcome.transaction_id });
                if (outcome.amount) { q.set("amount", String(outcome.amount)); }
                if (outcome.currency) { q.set("currency", outcome.currency); }
                if (outcome.product_id) { q.set("product_id", outcome.product_id); }
                if (outcome.product_title) { q.set("product", outcome.product_title); }
                window.location.assign("/payment/success?" + q.toString());
                return;
            }
            fail(outcome.tx_ref, outcome.transaction_id, outcome.reason);
        }).catch(function () {
            fail(response.tx_ref, response.transaction_id, "");
        });
    }

    form.addEventListener("input", refresh);
    form.addEventListener("submit", function (ev) {
        ev.preventDefault();
        if (inFlight || !valid() || !scriptReady) {
            return;
        }
        errorBox.textContent = "";
        setBusy(true);

        postJSON("/payments/initialize", {
            name: fields.name.value.trim(),
            email: fields.email.value.trim(),
            phone: fields.phone.value.trim(),
            productId: productId
        }).then(function (res) {
            var config = res.data;
            delete config.redirect_url;
            var settled = false;
            config.callback = function (response) {
                settled = true;
                var status = String(response.status || "").toLowerCase();
                if (status === "successful" || status === "completed") {
                    confirm(response);
                    return;
                }
                fail(response.tx_ref, response.transaction_id, "payment_not_successful");
            };
            config.onclose = function () {
                if (!settled) { setBusy(false); }
            };
            window.FlutterwaveCheckout(config);
        }).catch(function (err) {
            errorBox.textContent = err.message;
            setBusy(false);
        });
    });

    if (available) {
        loadScript();
    }
    refresh();
})();
</script>
</body>
</html>`))
