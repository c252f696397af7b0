package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/Layr-Labs/rewards-ledger/pkg/ledger"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/merkle"
	"github.com/Layr-Labs/rewards-ledger/pkg/proofs"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Result is the outcome of a single step.
type Result struct {
	Step           int    `json:"step" yaml:"step"`
	Op             string `json:"op" yaml:"op"`
	Now            int64  `json:"now" yaml:"now"`
	Address        string `json:"address,omitempty" yaml:"address,omitempty"`
	Amount         uint64 `json:"amount" yaml:"amount"`
	CommitmentRoot string `json:"commitmentRoot,omitempty" yaml:"commitmentRoot,omitempty"`
	Error          string `json:"error,omitempty" yaml:"error,omitempty"`
}

type Runner struct {
	ledger   *ledger.Ledger
	clock    *clockwork.FakeClock
	logger   *zap.Logger
	startTs  int64
	decimals uint8

	targets map[string]solana.PublicKey
	trees   map[string]*proofs.ClaimTree
}

// NewRunner returns a runner that advances clock between steps. Schedules
// and clawback delays are relative to the clock's time when Run starts.
func NewRunner(l *ledger.Ledger, clock *clockwork.FakeClock, logger *zap.Logger) *Runner {
	return &Runner{
		ledger:  l,
		clock:   clock,
		logger:  logger,
		targets: make(map[string]solana.PublicKey),
		trees:   make(map[string]*proofs.ClaimTree),
	}
}

// Run executes every step in order. A step failing with the error kind named
// by ExpectError is recorded and the run continues; any other failure stops it.
func (r *Runner) Run(ctx context.Context, s *Scenario) ([]*Result, error) {
	r.startTs = r.clock.Now().Unix()
	r.decimals = s.Decimals

	results := make([]*Result, 0, len(s.Steps))
	for i, step := range s.Steps {
		res := &Result{Step: i, Op: step.Op}
		receipt, err := r.execute(ctx, step)
		if receipt != nil {
			res.Now = receipt.Now
			res.Address = receipt.Address.String()
			res.Amount = receipt.Amount
			if receipt.CommitmentRoot != (gethcommon.Hash{}) {
				res.CommitmentRoot = receipt.CommitmentRoot.Hex()
			}
		} else {
			res.Now = r.clock.Now().Unix()
		}
		results = append(results, res)

		if err != nil {
			res.Error = err.Error()
			kind := ledgerErrors.KindOf(err)
			if step.ExpectError == "" || step.ExpectError != kind {
				r.logger.Sugar().Errorw("Scenario step failed",
					zap.Int("step", i),
					zap.String("op", step.Op),
					zap.Error(err),
				)
				return results, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
			}
			r.logger.Sugar().Debugw("Scenario step failed as expected",
				zap.Int("step", i),
				zap.String("op", step.Op),
				zap.String("kind", kind),
			)
			continue
		}
		if step.ExpectError != "" {
			return results, fmt.Errorf("step %d (%s): expected error %s", i, step.Op, step.ExpectError)
		}
		if step.ExpectAmount != nil && *step.ExpectAmount != res.Amount {
			return results, fmt.Errorf("step %d (%s): expected amount %d, got %d", i, step.Op, *step.ExpectAmount, res.Amount)
		}
	}
	return results, nil
}

func (r *Runner) target(name string) (solana.PublicKey, error) {
	address, ok := r.targets[name]
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("unknown target '%s'", name)
	}
	return address, nil
}

func (r *Runner) clawbackTs(step *Step) int64 {
	if step.ClawbackAfter == 0 {
		return 0
	}
	return r.startTs + step.ClawbackAfter
}

func (r *Runner) claimRequest(treeName string, claimant solana.PublicKey) (*merkle.ClaimRequest, error) {
	tree, ok := r.trees[treeName]
	if !ok {
		return nil, fmt.Errorf("unknown merkle distribution '%s'", treeName)
	}
	leaf, proof, err := tree.ProofFor(claimant)
	if err != nil {
		return nil, err
	}
	return &merkle.ClaimRequest{Leaf: leaf, Proof: proof}, nil
}

func (r *Runner) execute(ctx context.Context, step *Step) (*ledger.Receipt, error) {
	signer := AddressFor(step.Signer)
	user := AddressFor(step.User)
	mint := AddressFor(step.Mint)

	switch step.Op {
	case "advance":
		r.clock.Advance(time.Duration(step.Seconds) * time.Second)
		return nil, nil
	case "wallet":
		owner := AddressFor(step.Owner)
		receipt, err := r.ledger.OpenTokenAccount(ctx, owner, mint, r.decimals)
		if err != nil || step.Amount == 0 {
			return receipt, err
		}
		return r.ledger.MintTokens(ctx, owner, mint, step.Amount)
	case "mint":
		return r.ledger.MintTokens(ctx, AddressFor(step.Owner), mint, step.Amount)
	case "balance":
		owner := AddressFor(step.Owner)
		balance, err := r.ledger.TokenBalance(ctx, owner, mint)
		if err != nil {
			return nil, err
		}
		return &ledger.Receipt{Operation: step.Op, Now: r.clock.Now().Unix(), Address: owner, Amount: balance}, nil
	}

	if step.Op == "createPool" || step.Op == "createDirect" || step.Op == "createMerkle" {
		return r.create(ctx, step, signer, mint)
	}

	target, err := r.target(step.Target)
	if err != nil {
		return nil, err
	}
	switch step.Op {
	case "distribute":
		return r.ledger.DistributeRewards(ctx, signer, target, step.Amount)
	case "optIn":
		return r.ledger.OptIn(ctx, signer, target)
	case "optOut":
		return r.ledger.OptOut(ctx, signer, target)
	case "syncBalance":
		return r.ledger.SyncBalance(ctx, signer, target)
	case "setBalance":
		return r.ledger.SetBalance(ctx, signer, user, target, step.Amount)
	case "claimPool":
		return r.ledger.ClaimPoolRewards(ctx, signer, target, step.Amount)
	case "revokePool":
		mode, err := parseMode(step.Mode)
		if err != nil {
			return nil, err
		}
		return r.ledger.RevokePoolUser(ctx, signer, user, target, mode)
	case "closePool":
		return r.ledger.ClosePool(ctx, signer, target)

	case "addRecipient":
		schedule, err := step.Schedule.resolve(r.startTs)
		if err != nil {
			return nil, err
		}
		return r.ledger.AddDirectRecipient(ctx, signer, target, &ledger.AddDirectRecipientParams{
			Recipient: user,
			Amount:    step.Amount,
			Schedule:  schedule,
		})
	case "claimDirect":
		return r.ledger.ClaimDirect(ctx, signer, target, step.Amount)
	case "revokeDirect":
		mode, err := parseMode(step.Mode)
		if err != nil {
			return nil, err
		}
		return r.ledger.RevokeDirectRecipient(ctx, signer, target, user, mode)
	case "closeRecipient":
		return r.ledger.CloseDirectRecipient(ctx, signer, target, user)
	case "closeDirect":
		return r.ledger.CloseDirectDistribution(ctx, signer, target)

	case "claimMerkle":
		req, err := r.claimRequest(step.Target, signer)
		if err != nil {
			return nil, err
		}
		return r.ledger.ClaimMerkle(ctx, signer, target, req, step.Amount)
	case "revokeMerkle":
		mode, err := parseMode(step.Mode)
		if err != nil {
			return nil, err
		}
		req, err := r.claimRequest(step.Target, user)
		if err != nil {
			return nil, err
		}
		return r.ledger.RevokeMerkleClaim(ctx, signer, target, user, req, mode)
	case "closeMerkleClaim":
		return r.ledger.CloseMerkleClaim(ctx, signer, target)
	case "closeMerkle":
		return r.ledger.CloseMerkleDistribution(ctx, signer, target)
	}
	return nil, fmt.Errorf("unknown op '%s'", step.Op)
}

func (r *Runner) create(ctx context.Context, step *Step, authority, mint solana.PublicKey) (*ledger.Receipt, error) {
	if step.Name == "" {
		return nil, fmt.Errorf("%s requires a name", step.Op)
	}
	if _, exists := r.targets[step.Name]; exists {
		return nil, fmt.Errorf("target '%s' already defined", step.Name)
	}
	seed := AddressFor("seed:" + step.Name)

	var receipt *ledger.Receipt
	var err error
	switch step.Op {
	case "createPool":
		source, sErr := parseBalanceSource(step.BalanceSource)
		if sErr != nil {
			return nil, sErr
		}
		receipt, err = r.ledger.CreatePool(ctx, &ledger.CreatePoolParams{
			Authority:     authority,
			TrackedMint:   AddressFor(step.TrackedMint),
			RewardMint:    mint,
			Seed:          seed,
			BalanceSource: source,
			Revocable:     step.Revocable,
			ClawbackTs:    r.clawbackTs(step),
		})
	case "createDirect":
		receipt, err = r.ledger.CreateDirectDistribution(ctx, &ledger.CreateDirectDistributionParams{
			Authority:  authority,
			Mint:       mint,
			Seed:       seed,
			Revocable:  step.Revocable,
			ClawbackTs: r.clawbackTs(step),
		})
	case "createMerkle":
		tree, tErr := r.buildTree(step.Leaves)
		if tErr != nil {
			return nil, tErr
		}
		total, tErr := tree.Total()
		if tErr != nil {
			return nil, tErr
		}
		receipt, err = r.ledger.CreateMerkleDistribution(ctx, &ledger.CreateMerkleDistributionParams{
			Authority:   authority,
			Mint:        mint,
			Seed:        seed,
			MerkleRoot:  tree.Root(),
			TotalAmount: total,
			Revocable:   step.Revocable,
			ClawbackTs:  r.clawbackTs(step),
		})
		if err == nil {
			r.trees[step.Name] = tree
		}
	}
	if err != nil {
		return nil, err
	}
	r.targets[step.Name] = receipt.Address
	return receipt, nil
}

func (r *Runner) buildTree(specs []*LeafSpec) (*proofs.ClaimTree, error) {
	leaves := make([]proofs.Leaf, 0, len(specs))
	for _, spec := range specs {
		schedule, err := spec.Schedule.resolve(r.startTs)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, proofs.Leaf{
			Claimant: AddressFor(spec.Claimant),
			Amount:   spec.Amount,
			Schedule: schedule,
		})
	}
	return proofs.NewClaimTree(leaves)
}
