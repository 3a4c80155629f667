package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"booking-router/core/constants"
	"booking-router/core/logger"
	accountEntity "booking-router/modules/account/entity"
)

// UTMNameResolver turns a UTM key id into the parameter name it stands for.
type UTMNameResolver interface {
	LookupName(ctx context.Context, id string) (string, error)
}

// Targeting is the request side of the eligibility check.
type Targeting struct {
	UTMParams       map[string]any
	MatchedStateIDs []string
	CheckState      bool
}

// StateMatch reports whether the account serves one of the matched states.
func StateMatch(account *accountEntity.Account, matchedStateIDs []string, checkState bool) bool {
	if !checkState {
		return true
	}
	matched := make(map[string]bool, len(matchedStateIDs))
	for _, id := range matchedStateIDs {
		matched[id] = true
	}
	for _, id := range account.States {
		if matched[id] {
			return true
		}
	}
	return false
}

// AssetMatch applies the "<utmKeyId>:<threshold>" rule. Anything that cannot
// be parsed or resolved leaves the account eligible.
func AssetMatch(ctx context.Context, names UTMNameResolver, account *accountEntity.Account, utm map[string]any) bool {
	rule := strings.TrimSpace(account.AssetMinimum)
	if rule == "" {
		return true
	}
	keyID, raw, ok := strings.Cut(rule, ":")
	if !ok || keyID == "" {
		return true
	}
	threshold, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return true
	}

	name, err := names.LookupName(ctx, keyID)
	if err != nil || name == "" {
		logger.Warn("Eligibility:AssetMatch:LookupName:Failed", "error", err, "utm_key_id", keyID, "native_id", account.NativeID)
		return true
	}
	value, ok := utmFloat(utm[name])
	if !ok {
		return true
	}
	return value >= threshold
}

func utmFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case nil:
		return 0, false
	default:
		f, err := strconv.ParseFloat(fmt.Sprint(t), 64)
		return f, err == nil
	}
}

// CombineMatch joins the two predicates with the account's AND/OR condition.
func CombineMatch(condition string, stateOK, assetOK bool) bool {
	if condition == constants.ConditionOR {
		return stateOK || assetOK
	}
	return stateOK && assetOK
}

// FilterEligible keeps the candidates whose account targeting accepts the
// request. Rule lookups run concurrently; input order is preserved.
func FilterEligible(ctx context.Context, names UTMNameResolver, candidates []Candidate, t Targeting) []Candidate {
	keep := make([]bool, len(candidates))

	var wg sync.WaitGroup
	for i := range candidates {
		c := &candidates[i]
		if c.Account == nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			account := &c.Account.Account
			stateOK := StateMatch(account, t.MatchedStateIDs, t.CheckState)
			assetOK := AssetMatch(ctx, names, account, t.UTMParams)
			keep[i] = CombineMatch(account.MatchCondition(), stateOK, assetOK)
		}()
	}
	wg.Wait()

	eligible := make([]Candidate, 0, len(candidates))
	for i := range candidates {
		if keep[i] {
			eligible = append(eligible, candidates[i])
		}
	}
	return eligible
}
