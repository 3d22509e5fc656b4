package advisor

import (
	"encoding/json"
	"fmt"

	"StockSense/internal/domain/models"

	"github.com/shopspring/decimal"
)

func BuildResolvePrompt(userInput string) string {
	return fmt.Sprintf(`You are a stock trading assistant. Extract the NASDAQ-100 company ticker symbol and the action the user wants to perform from the following input: '%s'.

Return the output in valid JSON format with two fields:
{"ticker": "<ticker>", "action": "<action>"}

Examples:
"I want to invest in Tesla" → {"ticker": "TSLA", "action": "buy"}
"Should I sell my Amazon stock?" → {"ticker": "AMZN", "action": "sell"}
"Is Microsoft a good investment?" → {"ticker": "MSFT", "action": "analyze"}
"Should I hold onto my Nvidia shares?" → {"ticker": "NVDA", "action": "hold"}
"What is the latest update on Apple?" → {"ticker": "AAPL", "action": "news"}

If the input does not name a company, return {"ticker": "", "action": ""}.
Ensure the response is only valid JSON and nothing else.`, userInput)
}

type promptSentiment struct {
	Date               string `json:"date"`
	Sentiment          string `json:"sentiment"`
	SentimentReasoning string `json:"sentiment_reasoning"`
}

func BuildRecommendationPrompt(ticker string, forecast []float64, sentiment []models.Sentiment) string {
	prices := make([]decimal.Decimal, len(forecast))
	for i, p := range forecast {
		prices[i] = decimal.NewFromFloat(p).Round(2)
	}
	pricesJSON, _ := json.Marshal(prices)

	rows := make([]promptSentiment, len(sentiment))
	for i, s := range sentiment {
		rows[i] = promptSentiment{Date: s.Date, Sentiment: s.Sentiment, SentimentReasoning: s.SentimentReasoning}
	}
	sentimentJSON, _ := json.Marshal(rows)

	return fmt.Sprintf(`You are a stock trading assistant helping investors make decisions.
The user wants to make an investment decision for the stock '%[1]s'.
Here are the predicted closing prices for the next %[2]d trading days for %[1]s: %[3]s.
Here is a summary of recent sentiment analysis for %[1]s:
'%[4]s'

Based on this prediction data and sentiment, provide a recommendation. Build your response on the sentiment and sentiment_reasoning fields to give a description which explains, from historical data, why the decision is being made.
Return a JSON output in the format:
{"stock_name": "<stock_ticker>", "action": "<buy/sell/hold>", "description": "<reasoning based on data>"}

Make sure your response is only valid JSON and nothing else.`,
		ticker, len(forecast), pricesJSON, sentimentJSON)
}
