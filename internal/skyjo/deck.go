package skyjo

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/Nyaru01/skyjo/internal/models"
)

type valueCount struct {
	value int
	count int
}

// copySetDistribution is the number of copies of each face value in a single
// copy-set, in a fixed order so a seeded shuffle is reproducible. Rooms with
// five or more players shuffle two copy-sets together.
var copySetDistribution = []valueCount{
	{-10, 3},
	{-5, 5},
	{-2, 7},
	{-1, 10},
	{0, 15},
	{1, 10},
	{2, 10},
	{3, 10},
	{4, 10},
	{5, 10},
	{6, 10},
	{7, 10},
	{8, 10},
	{9, 10},
	{10, 10},
	{11, 10},
	{12, 10},
	{models.CursedValue, 6},
}

// Special-card counts per copy-set, bonus mode only.
const (
	swapCardsPerSet      = 6
	blackHoleCardsPerSet = 4
	chestCardsPerSet     = 6
)

// copySetsForPlayers returns how many copy-sets a table of n players uses.
func copySetsForPlayers(n int) int {
	if n >= 5 {
		return 2
	}
	return 1
}

// CopySetSize is the number of cards in one copy-set, excluding bonus cards.
func CopySetSize() int {
	total := 0
	for _, vc := range copySetDistribution {
		total += vc.count
	}
	return total
}

// buildDeck assembles and shuffles the draw pile for a new round.
func buildDeck(playerCount int, bonusMode bool, rng *rand.Rand) []*models.Card {
	sets := copySetsForPlayers(playerCount)
	var deck []*models.Card
	for s := 0; s < sets; s++ {
		for _, vc := range copySetDistribution {
			for i := 0; i < vc.count; i++ {
				deck = append(deck, &models.Card{ID: uuid.New(), Value: vc.value})
			}
		}
		if bonusMode {
			for i := 0; i < swapCardsPerSet; i++ {
				deck = append(deck, &models.Card{ID: uuid.New(), Special: models.SpecialSwap})
			}
			for i := 0; i < blackHoleCardsPerSet; i++ {
				deck = append(deck, &models.Card{ID: uuid.New(), Special: models.SpecialBlackHole})
			}
			for i := 0; i < chestCardsPerSet; i++ {
				deck = append(deck, &models.Card{ID: uuid.New(), Special: models.SpecialChest})
			}
		}
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
