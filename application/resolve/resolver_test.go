package resolve_test

import (
	"testing"

	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"octavo/application/resolve"
	"octavo/domain/core"
	"octavo/domain/core/valueobjects"
	"octavo/infrastructure/config"
	apperrors "octavo/pkg/errors"
)

const testPubKey = "3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d"

func testResolver(t *testing.T) *resolve.Resolver {
	t.Helper()
	return resolve.NewResolver(&config.Config{
		PublicationRelays: []string{"wss://pubs.example"},
		ArticleRelays:     []string{"wss://articles.example"},
	}, zap.NewNop())
}

func TestDecodeNaddr(t *testing.T) {
	code, err := nip19.EncodeEntity(testPubKey, core.KindPublicationIndex, "my-book", []string{"wss://hint.example"})
	require.NoError(t, err)

	r := testResolver(t)
	target, err := r.Decode(code)
	require.NoError(t, err)

	require.True(t, target.IsAddress())
	assert.Equal(t, core.KindPublicationIndex, target.Address.Kind())
	assert.Equal(t, testPubKey, target.Address.PubKey())
	assert.Equal(t, "my-book", target.Address.Identifier())
	assert.Equal(t, []string{"wss://hint.example"}, target.Relays)
}

func TestDecodeNpubAndNote(t *testing.T) {
	npub, err := nip19.EncodePublicKey(testPubKey)
	require.NoError(t, err)
	id := "5c83da77af1dec6d7289834998ad7aafbd9e2191396d75ec3cc27f5a77226f36"
	note, err := nip19.EncodeNote(id)
	require.NoError(t, err)

	r := testResolver(t)

	profile, err := r.Decode(npub)
	require.NoError(t, err)
	assert.True(t, profile.IsProfile())
	assert.Equal(t, testPubKey, profile.PubKey)

	event, err := r.Decode(note)
	require.NoError(t, err)
	assert.True(t, event.IsEvent())
	assert.Equal(t, id, event.EventID)
}

func TestDecodeNevent(t *testing.T) {
	id := "5c83da77af1dec6d7289834998ad7aafbd9e2191396d75ec3cc27f5a77226f36"
	code, err := nip19.EncodeEvent(id, []string{"wss://hint.example"}, testPubKey)
	require.NoError(t, err)

	r := testResolver(t)
	target, err := r.Decode(code)
	require.NoError(t, err)

	assert.True(t, target.IsEvent())
	assert.Equal(t, id, target.EventID)
	assert.Equal(t, testPubKey, target.Author)
	assert.Equal(t, []string{"wss://hint.example"}, target.Relays)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	r := testResolver(t)

	tests := []struct {
		name string
		code string
	}{
		{name: "empty", code: ""},
		{name: "whitespace", code: "   "},
		{name: "not bech32", code: "definitely-not-an-address"},
		{name: "truncated naddr", code: "naddr1qq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Decode(tt.code)
			require.Error(t, err)
			assert.True(t, apperrors.IsBadAddress(err))
		})
	}
}

func TestDecodeItemRejectsProfileKey(t *testing.T) {
	npub, err := nip19.EncodePublicKey(testPubKey)
	require.NoError(t, err)

	r := testResolver(t)
	_, err = r.DecodeItem(npub)
	require.Error(t, err)
	assert.True(t, apperrors.IsBadAddress(err))
}

func TestDecodePublicKey(t *testing.T) {
	r := testResolver(t)

	got, err := r.DecodePublicKey(testPubKey)
	require.NoError(t, err)
	assert.Equal(t, testPubKey, got)

	npub, err := nip19.EncodePublicKey(testPubKey)
	require.NoError(t, err)
	got, err = r.DecodePublicKey(npub)
	require.NoError(t, err)
	assert.Equal(t, testPubKey, got)

	note, err := nip19.EncodeNote("5c83da77af1dec6d7289834998ad7aafbd9e2191396d75ec3cc27f5a77226f36")
	require.NoError(t, err)
	_, err = r.DecodePublicKey(note)
	assert.Error(t, err)
}

func TestRelaysForPrecedence(t *testing.T) {
	r := testResolver(t)

	naddrWithHint, err := nip19.EncodeEntity(testPubKey, core.KindPublicationIndex, "book", []string{"wss://hint.example"})
	require.NoError(t, err)
	hinted, err := r.Decode(naddrWithHint)
	require.NoError(t, err)

	naddrBare, err := nip19.EncodeEntity(testPubKey, core.KindPublicationIndex, "book", nil)
	require.NoError(t, err)
	bare, err := r.Decode(naddrBare)
	require.NoError(t, err)

	articleAddr, err := nip19.EncodeEntity(testPubKey, core.KindArticle, "essay", nil)
	require.NoError(t, err)
	article, err := r.Decode(articleAddr)
	require.NoError(t, err)

	explicit := valueobjects.NewRelaySet([]string{"wss://explicit.example"})

	assert.Equal(t, []string{"wss://explicit.example"}, r.RelaysFor(explicit, hinted).URLs(),
		"explicit relays override embedded hints")
	assert.Equal(t, []string{"wss://hint.example"}, r.RelaysFor(valueobjects.RelaySet{}, hinted).URLs(),
		"embedded hints override defaults")
	assert.Equal(t, []string{"wss://pubs.example"}, r.RelaysFor(valueobjects.RelaySet{}, bare).URLs(),
		"publication kinds fall back to publication defaults")
	assert.Equal(t, []string{"wss://articles.example"}, r.RelaysFor(valueobjects.RelaySet{}, article).URLs(),
		"article kinds fall back to article defaults")
}
