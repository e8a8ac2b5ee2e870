package service

import "fmt"

type RefundDecision struct {
	AmountCents int64
	Message     string
}

// CalculateRefund — чистая функция от (totalAmount, couponMinOrder, itemPrice).
// Возврат не должен опускать сумму заказа ниже минимума купона, пока купон
// считается применённым: в этом случае сумма к зачислению обнуляется, а
// причина фиксируется в сообщении.
func CalculateRefund(totalAmountCents int64, couponMinOrderCents *int64, itemPriceCents int64) RefundDecision {
	if itemPriceCents <= 0 {
		return RefundDecision{
			AmountCents: 0,
			Message:     "Refund not processed due to missing price information",
		}
	}

	newTotal := totalAmountCents - itemPriceCents
	if couponMinOrderCents != nil && newTotal < *couponMinOrderCents {
		return RefundDecision{
			AmountCents: 0,
			Message:     "Refund not processed as the remaining total falls below the coupon's minimum order value.",
		}
	}

	return RefundDecision{
		AmountCents: itemPriceCents,
		Message:     fmt.Sprintf("Refund of ₹%d.%02d processed successfully.", itemPriceCents/100, itemPriceCents%100),
	}
}
