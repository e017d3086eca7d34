package scan

import (
	"github.com/danieljcheung/trace/internal/osint/correlate"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
	"github.com/danieljcheung/trace/internal/osint/probes/directory"
	"github.com/danieljcheung/trace/internal/osint/probes/identity"
)

// defaultRegistry assembles every probe this module ships into the three
// hops, in registration order. client is shared by every probe that
// issues HTTP requests; one Client per scan.
func defaultRegistry(client *httpx.Client) probe.Registry {
	hop1 := []probe.Probe{
		directory.NewUsernameExtractor(),
		directory.NewGravatarLookup(client),
		directory.NewBreachAggregator(),
		directory.NewBreachKAnonymityLookup(client),
		directory.NewReverseLookup(client),
		directory.NewDocumentSearch(client),
		directory.NewPasteSearch(client),
		directory.NewCommitAuthorSearch(client),
		directory.NewCryptoProofDirectoryLookup(client),
		directory.NewIntelAggregatorSearch(client),
		directory.NewInfostealerLogSearch(client),
	}

	hop2 := []probe.Probe{
		identity.NewPlatformExistenceChecker(client),
		identity.NewCodeHostProfileReader(client),
		identity.NewCodeHostSecretScanner(client),
		identity.NewSocialDeepDive(client),
		identity.NewWebArchiveLookup(client),
	}

	hop3 := []probe.Probe{
		correlate.NewDataBrokerEnumerator(),
		correlate.NewLocationAggregator(),
		correlate.NewConnectedAccountsCorrelator(client),
	}

	return probe.NewRegistry(hop1, hop2, hop3)
}
