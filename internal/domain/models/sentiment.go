package models

// Sentiment is one stored news-sentiment insight for a ticker. The ticker
// field name in storage is configurable, so the store maps it by hand.
type Sentiment struct {
	Date               string `bson:"date" json:"date"`
	Sentiment          string `bson:"sentiment" json:"sentiment"`
	SentimentReasoning string `bson:"sentiment_reasoning" json:"sentiment_reasoning"`
	Ticker             string `bson:"-" json:"ticker"`
}
