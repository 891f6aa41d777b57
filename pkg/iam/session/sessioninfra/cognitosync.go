package sessioninfra

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitosync"

	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/iam/session"
)

// SyncAPI is the part of the Cognito Sync client the store calls.
type SyncAPI interface {
	ListRecords(ctx context.Context, in *cognitosync.ListRecordsInput, optFns ...func(*cognitosync.Options)) (*cognitosync.ListRecordsOutput, error)
}

// SyncStore reads sessions from the identity's user profile dataset.
type SyncStore struct {
	client  SyncAPI
	dataset string
}

// NewSyncStore creates a store reading dataset.
func NewSyncStore(client SyncAPI, dataset string) *SyncStore {
	return &SyncStore{client: client, dataset: dataset}
}

// Get implements session.Store.
func (s *SyncStore) Get(ctx context.Context, identity iam.Identity) (*session.Session, error) {
	records := map[string]string{}

	var next *string
	for {
		out, err := s.client.ListRecords(ctx, &cognitosync.ListRecordsInput{
			IdentityPoolId: aws.String(identity.IdentityPoolID),
			IdentityId:     aws.String(identity.IdentityID.String()),
			DatasetName:    aws.String(s.dataset),
			NextToken:      next,
		})
		if err != nil {
			return nil, err
		}

		for _, r := range out.Records {
			if r.Key == nil || r.Value == nil {
				continue
			}
			if _, seen := records[*r.Key]; !seen {
				records[*r.Key] = *r.Value
			}
		}

		if aws.ToString(out.NextToken) == "" {
			break
		}
		next = out.NextToken
	}

	if len(records) == 0 {
		return nil, session.ErrNotFound
	}
	return session.FromRecords(records)
}
