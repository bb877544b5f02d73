// Package config holds the reward table. Rewards are a versioned
// configuration document rather than hard-coded constants: payouts have
// changed before, and a version field keeps old persisted state
// interpretable when they change again.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rowanvale/questlog/internal/model"
)

// CurrentRewardVersion identifies the built-in reward schema.
const CurrentRewardVersion = 2

// RewardTable maps each cadence to the coin payout snapshotted onto quests
// at creation time.
type RewardTable struct {
	Version int          `yaml:"version" json:"version"`
	Daily   model.Reward `yaml:"daily" json:"daily"`
	Weekly  model.Reward `yaml:"weekly" json:"weekly"`
	Monthly model.Reward `yaml:"monthly" json:"monthly"`
}

// DefaultRewards returns the built-in table: daily 5, weekly 25,
// monthly 100 coins.
func DefaultRewards() RewardTable {
	return RewardTable{
		Version: CurrentRewardVersion,
		Daily:   model.Reward{Coins: 5},
		Weekly:  model.Reward{Coins: 25},
		Monthly: model.Reward{Coins: 100},
	}
}

// LoadRewards reads a reward table from a YAML file. An empty path returns
// the defaults. Missing entries fall back to the default payout for that
// cadence so a partial override file stays valid.
func LoadRewards(path string) (RewardTable, error) {
	table := DefaultRewards()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("read reward table: %w", err)
	}

	var file RewardTable
	if err := yaml.Unmarshal(data, &file); err != nil {
		return table, fmt.Errorf("parse reward table: %w", err)
	}

	if file.Version != 0 {
		table.Version = file.Version
	}
	if file.Daily.Coins > 0 {
		table.Daily = file.Daily
	}
	if file.Weekly.Coins > 0 {
		table.Weekly = file.Weekly
	}
	if file.Monthly.Coins > 0 {
		table.Monthly = file.Monthly
	}
	return table, nil
}

// For returns the reward for a cadence.
func (t RewardTable) For(qt model.QuestType) model.Reward {
	switch qt {
	case model.QuestWeekly:
		return t.Weekly
	case model.QuestMonthly:
		return t.Monthly
	default:
		return t.Daily
	}
}
