package contactmethod

import (
	"context"

	"github.com/oncallkit/notifydesk/pkg/gql"
)

// LocalMutator runs CreateUserContactMethod in process.
type LocalMutator struct {
	Service *Service
}

func (m LocalMutator) CreateUserContactMethod(ctx context.Context, in CreateInput) (string, error) {
	cm, err := m.Service.CreateUserContactMethod(ctx, in)
	if err != nil {
		return "", err
	}
	return cm.ID, nil
}

// CreateMutation is the GraphQL document of CreateUserContactMethod.
const CreateMutation = `mutation CreateUserContactMethod($input: CreateUserContactMethodInput!) {
  createUserContactMethod(input: $input) {
    id
  }
}`

// CreateOperation is the operation name of CreateMutation.
const CreateOperation = "CreateUserContactMethod"

// CreateResult is the data of a CreateUserContactMethod response.
type CreateResult struct {
	CreateUserContactMethod struct {
		ID string `json:"id"`
	} `json:"createUserContactMethod"`
}

// RemoteMutator sends CreateUserContactMethod to a GraphQL endpoint.
type RemoteMutator struct {
	Client *gql.Client
}

func (m RemoteMutator) CreateUserContactMethod(ctx context.Context, in CreateInput) (string, error) {
	var res CreateResult
	err := m.Client.Do(ctx, gql.Request{
		Query:         CreateMutation,
		OperationName: CreateOperation,
		Variables:     map[string]any{"input": in},
	}, &res)
	if err != nil {
		return "", err
	}
	return res.CreateUserContactMethod.ID, nil
}
