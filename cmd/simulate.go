package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"casino/blackjack"
)

const (
	simulationBet     int64 = 10
	simulationBankroll int64 = 1 << 40
)

// SimulationResult aggregates the hands played by a simulation
type SimulationResult struct {
	Rounds      int
	Hands       int
	Wagered     int64
	Returned    int64
	Wins        int
	Blackjacks  int
	Pushes      int
	Losses      int
	DealerBusts int
}

// HouseEdge is the share of every wagered coin the house keeps
func (r *SimulationResult) HouseEdge() float64 {
	if r.Wagered == 0 {
		return 0
	}
	return float64(r.Wagered-r.Returned) / float64(r.Wagered)
}

func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Simulate plays rounds of blackjack with the given number of seats, every
// seat following the same fixed strategy. The same seed always replays the
// same games.
func Simulate(rounds, seats int, seed int64) (*SimulationResult, error) {
	if rounds <= 0 || seats <= 0 {
		return nil, fmt.Errorf("rounds and seats must be positive")
	}

	rules := blackjack.Rules{MinBet: simulationBet, MaxPlayers: seats}
	shuffler := blackjack.NewSeededShuffler(seed)
	now := time.Unix(0, 0).UTC()
	result := &SimulationResult{}

	for round := 0; round < rounds; round++ {
		game := blackjack.NewSession(0, 0, 1, "simulation", blackjack.NewDeck(shuffler), now)
		for seat := 1; seat <= seats; seat++ {
			if _, err := game.Join(rules, int64(seat), fmt.Sprintf("seat-%d", seat), simulationBet, simulationBankroll, now); err != nil {
				return nil, fmt.Errorf("round %d: %w", round, err)
			}
		}
		if err := game.Start(1, now); err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}

		for game.Status == blackjack.StatusPlaying {
			if err := playTurn(game); err != nil {
				return nil, fmt.Errorf("round %d: %w", round, err)
			}
		}

		settlement, err := game.PlayDealer(now)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		tally(result, settlement)
	}
	return result, nil
}

// playTurn makes one decision for the acting player: split aces and eights,
// double on 10 or 11, hit below 17
func playTurn(game *blackjack.Session) error {
	p := game.CurrentPlayer()
	if p == nil {
		return errors.New("no player to act")
	}
	h := p.Active()

	var err error
	switch {
	case !p.IsSplit() && h.Cards.CanSplit() && (h.Cards[0].Rank == blackjack.Ace || h.Cards[0].Rank == blackjack.Eight):
		_, err = game.Split(p.DiscordID, simulationBankroll)
	case len(h.Cards) == 2 && (h.Cards.Value() == 10 || h.Cards.Value() == 11):
		_, err = game.DoubleDown(p.DiscordID, simulationBankroll)
	case h.Cards.Value() < blackjack.DealerStandsOn:
		_, err = game.Hit(p.DiscordID)
	default:
		_, err = game.Stand(p.DiscordID)
	}
	if errors.Is(err, blackjack.ErrInvalidAction) {
		// The table refused the preferred play
		_, err = game.Stand(p.DiscordID)
	}
	return err
}

func tally(result *SimulationResult, settlement *blackjack.Settlement) {
	result.Rounds++
	if settlement.DealerBust {
		result.DealerBusts++
	}
	for _, p := range settlement.Players {
		result.Wagered += p.Bet
		result.Returned += p.Payout
		for _, h := range p.Hands {
			result.Hands++
			switch {
			case h.Cards.IsBlackjack() && h.Payout > h.Stake:
				result.Blackjacks++
			case h.Payout > h.Stake:
				result.Wins++
			case h.Payout == h.Stake:
				result.Pushes++
			default:
				result.Losses++
			}
		}
	}
}

// PrintSimulation writes a human readable report
func PrintSimulation(w io.Writer, seed int64, r *SimulationResult) {
	fmt.Fprintf(w, "=== Blackjack simulation (seed %d) ===\n", seed)
	fmt.Fprintf(w, "Rounds: %d | Hands: %d\n", r.Rounds, r.Hands)
	fmt.Fprintf(w, "Wins: %.2f%% | Blackjacks: %.2f%% | Pushes: %.2f%% | Losses: %.2f%%\n",
		rate(r.Wins, r.Hands), rate(r.Blackjacks, r.Hands), rate(r.Pushes, r.Hands), rate(r.Losses, r.Hands))
	fmt.Fprintf(w, "Dealer busts: %.2f%% of rounds\n", rate(r.DealerBusts, r.Rounds))
	fmt.Fprintf(w, "Wagered: %d | Returned: %d | House edge: %+.2f%%\n", r.Wagered, r.Returned, r.HouseEdge()*100)
}
