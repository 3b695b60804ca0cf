package accountsrv

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/playforge/login/pkg/account"
	"github.com/playforge/login/pkg/auth"
	"github.com/playforge/login/pkg/errx"
	"github.com/playforge/login/pkg/kernel"
	"github.com/playforge/login/pkg/logx"
	"github.com/playforge/login/pkg/social"
)

// proceedAuthentication is the final step of every entry point: all
// conflicts are resolved, the account is known, and what remains is scope
// resolution, the optional info merge, and the token mint.
func (s *AccountService) proceedAuthentication(ctx context.Context, tx account.Tx, accountID kernel.AccountID, credential kernel.Credential, gamespaceID kernel.GamespaceID, requestedScopes kernel.ScopeSet, args auth.Args, env auth.Env) (*AuthResult, error) {
	authenticator, ok := s.deps.Registry.Get(credential.Type)
	if !ok {
		return nil, account.Errors.New(account.CodeUnknownCredential).
			WithMessagef("Unknown credential type: %s", credential.Type)
	}

	authAs := args["as"]
	if authAs != "" && !kernel.ValidateTokenName(authAs) {
		return nil, account.Errors.New(account.CodeBadAuthAs).
			WithMessagef("Bad auth as name format: %s", authAs)
	}
	if authAs == "" {
		authAs = account.DefaultTokenName
	}

	// For social credentials, bind the credential to the account on the
	// social service and pick up profile data. Not fatal on failure.
	fetchProfile := args["import_profile"] != "false"
	var profileData social.Profile
	if authenticator.SocialProfile() {
		var err error
		profileData, err = s.deps.Social.AttachAccount(ctx, gamespaceID, credential, accountID, env, fetchProfile)
		if err != nil {
			logx.Warnf("failed to get profile data: %v", err)
			profileData = nil
		}
	}

	userScopes, err := s.deps.Access.AccountScopes(ctx, tx, gamespaceID, accountID)
	if err != nil {
		if !errors.Is(err, account.ErrNoScopesFound) {
			return nil, errx.Wrap(err, "failed to get account access")
		}
		userScopes = kernel.ScopeSet{}
	}

	gamespaceScopes, err := s.deps.Gamespaces.GamespaceScopes(ctx, tx, gamespaceID)
	if err != nil {
		if errors.Is(err, account.ErrGamespaceNotFound) {
			return nil, account.Errors.New(account.CodeNoSuchGamespace).
				WithMessagef("Gamespace ID '%s' was not found.", gamespaceID)
		}
		return nil, errx.Wrap(err, "failed to get gamespace scopes")
	}
	userScopes = userScopes.Union(gamespaceScopes)

	shouldHave := args["should_have"]
	if shouldHave == "" {
		shouldHave = "*"
	}
	shouldHaveScopes := kernel.ScopeSet{}
	if shouldHave != "*" {
		shouldHaveScopes = kernel.ParseScopes(shouldHave)
	}
	for scope := range requestedScopes {
		if userScopes.Contains(scope) {
			continue
		}
		if shouldHave == "*" || shouldHaveScopes.Contains(scope) {
			return nil, account.Errors.New(account.CodeScopeRestricted).
				WithMessagef("User '%s' has no scope '%s' asked.", credential, scope).
				WithDetail("credential", credential.String())
		}
		// Not granted but not required either: dropped silently.
	}

	unique := args["unique"] != "false"
	if !unique && !userScopes.Contains(account.ScopeNonUnique) {
		return nil, account.Errors.New(account.CodeNonUniqueTokenRestricted).
			WithMessagef("User '%s' has no access to disable unique tokens (scope '%s' is required).",
				credential, account.ScopeNonUnique).
			WithDetail("credential", credential.String())
	}

	allowedScopes := requestedScopes.Intersect(userScopes)

	if infoArg := args["info"]; infoArg != "" {
		var patch map[string]interface{}
		if err := json.Unmarshal([]byte(infoArg), &patch); err != nil || patch == nil {
			return nil, account.Errors.New(account.CodeBadAccountInfo)
		}
		if err := s.deps.Accounts.UpdateInfo(ctx, tx, accountID, patch); err != nil {
			return nil, errx.Wrap(err, "failed to update account info")
		}
	}

	signed, err := s.deps.Signer.Sign(credential, accountID, gamespaceID, allowedScopes.Slice(), unique)
	if err != nil {
		return nil, errx.Wrap(err, "failed to sign token")
	}

	if unique {
		if err := s.deps.Tokens.Save(ctx, accountID, authAs, signed.UUID, signed.Expires); err != nil {
			return nil, errx.Wrap(err, "failed to save token")
		}
	}

	// Push provider profile fields (avatar, nickname). Not fatal on failure.
	if authenticator.SocialProfile() && profileData != nil {
		if err := s.deps.Social.UpdateProfile(ctx, gamespaceID, accountID, profileData); err != nil {
			logx.Warnf("failed to update user profile: %v", err)
		}
	}

	logx.WithFields(logx.Fields{
		"credential": credential.String(),
		"account":    accountID,
		"scopes":     allowedScopes.String(),
	}).Info("authorized user")

	return &AuthResult{
		Token:      signed.Value,
		Account:    accountID,
		Credential: credential.String(),
		Scopes:     signed.Scopes,
	}, nil
}
