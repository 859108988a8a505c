// Package billing реализует адаптер платежного шлюза (Stripe-совместимый API):
// создание клиентов и checkout-сессий, проверку подписи webhook и разбор
// событий в типизированную форму.
package billing

// Статус подписки, который шлюз считает активным.
const StatusActive = "active"

// Event закрытое множество обрабатываемых событий шлюза.
// Сырой JSON события разбирается на границе (ConstructEvent), внутренняя
// логика никогда не работает с нетипизированными полями.
type Event interface {
	isEvent()
}

// SubscriptionUpserted событие создания или обновления подписки клиента.
type SubscriptionUpserted struct {
	CustomerID     string // Идентификатор клиента в шлюзе
	SubscriptionID string // Идентификатор подписки в шлюзе
	Status         string // Статус подписки на стороне шлюза
	PriceID        string // Идентификатор тарифа из позиции подписки
}

func (SubscriptionUpserted) isEvent() {}

// SubscriptionDeleted событие удаления подписки клиента.
type SubscriptionDeleted struct {
	CustomerID string
}

func (SubscriptionDeleted) isEvent() {}

// Other любое событие, не относящееся к подпискам. Подтверждается без действий.
type Other struct {
	Type string
}

func (Other) isEvent() {}

// wireEvent форма события на проводе.
type wireEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Customer string `json:"customer"`
			Status   string `json:"status"`
			Items    struct {
				Data []struct {
					Price struct {
						ID string `json:"id"`
					} `json:"price"`
				} `json:"data"`
			} `json:"items"`
		} `json:"object"`
	} `json:"data"`
}
