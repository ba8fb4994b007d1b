package relation

import (
	"context"
	"fmt"

	pb "github.com/ory/keto/proto/ory/keto/relation_tuples/v1alpha2"
)

// Check reports whether a subject set has the given relation to the object.
func (c *Client) Check(ctx context.Context, namespace, object, relation string, subjectNamespace, subjectObject string) (bool, error) {
	if c.checkSC == nil {
		return false, ErrReadConnectNotInitialed
	}
	resp, err := c.checkSC.Check(ctx, &pb.CheckRequest{
		Tuple: &pb.RelationTuple{
			Namespace: namespace,
			Object:    object,
			Relation:  relation,
			Subject: &pb.Subject{
				Ref: &pb.Subject_Set{
					Set: &pb.SubjectSet{
						Namespace: subjectNamespace,
						Object:    subjectObject,
					},
				},
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return resp.Allowed, nil
}

// CheckBySubjectId reports whether a concrete subject id has the given relation
// to the object, e.g. whether a user is a participant of an order.
func (c *Client) CheckBySubjectId(ctx context.Context, namespace, object, relation string, subjectId string) (bool, error) {
	if c.checkSC == nil {
		return false, ErrReadConnectNotInitialed
	}

	resp, err := c.checkSC.Check(ctx, &pb.CheckRequest{
		Tuple: &pb.RelationTuple{
			Namespace: namespace,
			Object:    object,
			Relation:  relation,
			Subject: &pb.Subject{
				Ref: &pb.Subject_Id{
					Id: subjectId,
				},
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return resp.Allowed, nil
}
