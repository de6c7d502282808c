package events

import "strconv"

const (
	TopicOrderSettled    = "shop.order.settled"
	TopicPaymentRejected = "shop.payment.rejected"
	TopicBasketExpired   = "shop.basket.expired"
	TopicOutbound        = "shop.outbound"
)

// Partition key = customer id, supaya semua event 1 customer maintain urutan.
func PartitionKey(customerID int64) []byte { return []byte(strconv.FormatInt(customerID, 10)) }
