package models

// Fill — нормализованный результат исполненного маркет-ордера.
// Любой "error"-статус в ответе биржи превращается в ошибку на границе шлюза,
// сюда доходят только заполненные ордера.
type Fill struct {
	OrderID   int64
	TotalSize float64
	AvgPrice  float64
}
