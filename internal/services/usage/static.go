package usage

import "github.com/JAYANTJOSHI001/vertex-ai/internal/models"

// PlaceholderActiveModels is reported when active models cannot be counted.
const PlaceholderActiveModels = 5

// MaxRankedModels bounds the model usage ranking.
const MaxRankedModels = 5

// StaticBuckets returns the demonstration weekly series.
func StaticBuckets() [7]models.DailyBucket {
	return [7]models.DailyBucket{
		{Day: "Mon", Calls: 400},
		{Day: "Tue", Calls: 300},
		{Day: "Wed", Calls: 500},
		{Day: "Thu", Calls: 280},
		{Day: "Fri", Calls: 590},
		{Day: "Sat", Calls: 320},
		{Day: "Sun", Calls: 250},
	}
}

// StaticModels returns the demonstration model ranking.
func StaticModels() []models.ModelUsageEntry {
	return []models.ModelUsageEntry{
		{Name: "GPT-4", Count: 65},
		{Name: "DALL-E", Count: 45},
		{Name: "Stable Diffusion", Count: 38},
		{Name: "Claude", Count: 28},
		{Name: "Whisper", Count: 18},
	}
}
