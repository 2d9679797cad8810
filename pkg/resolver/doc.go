// Package resolver computes effective preference values.
//
// A query names a resource and the requester (gateway, optional user, and
// the user's groups in caller-supplied order). Records are gathered from
// the three levels and merged per key:
//
//  1. a GATEWAY record marked enforced wins outright;
//  2. otherwise the first group, in supplied order, with an enforced record;
//  3. otherwise the USER record;
//  4. otherwise the first group, in supplied order, defining the key;
//  5. otherwise the GATEWAY record.
//
// The order of groups is part of the contract. Repeated group ids count once.
package resolver
