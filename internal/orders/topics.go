package orders

import "strconv"

// Topic default untuk event siklus hidup order; bisa dioverride via KAFKA_TOPIC.
const TopicOrderEvents = "restaurant.order.events"

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID int64) []byte { return []byte(strconv.FormatInt(orderID, 10)) }

// Purge menyentuh banyak order sekaligus; pakai key tetap.
var purgeKey = []byte("purge")
