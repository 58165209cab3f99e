package types

// Stage percentages, in order. A roadmap always has one stage per entry.
var StagePercentages = []int{25, 50, 75, 100}

// RoadmapStageCount is the number of stages every roadmap carries.
const RoadmapStageCount = 4

// RoadmapStage is one milestone of a roadmap paired with its garment reward.
type RoadmapStage struct {
	TargetPercentage int    `json:"target_percentage"`
	MilestoneTask    string `json:"milestone_task"`
	ClothingItem     string `json:"clothing_item"`
}

// ClothingItems returns the clothing item of every stage, in order.
func ClothingItems(stages []RoadmapStage) []string {
	items := make([]string, len(stages))
	for i, s := range stages {
		items[i] = s.ClothingItem
	}
	return items
}
