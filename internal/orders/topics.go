package orders

import "strconv"

const TopicOrderCreated = "grocery.order.created"

func CorrelationID(orderID int64) string { return strconv.FormatInt(orderID, 10) }

// PartitionKey keeps every event of one order on one partition.
func PartitionKey(orderID int64) []byte { return []byte(CorrelationID(orderID)) }
