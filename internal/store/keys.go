package store

import (
	"fmt"

	"github.com/listenupapp/genregraph/internal/domain"
)

// Key layout. Integer IDs are zero-padded so byte order matches numeric order.
//
//	seq:genre                                  -> last genre ID
//	seq:genre_history                          -> last history sequence
//	genre:<id>                                 -> domain.Genre
//	genre_tree:<id>                            -> treeRecord
//	genre_history:<genreID>:<seq>              -> domain.GenreHistory
//	idx:genre_history:seq:<seq>                -> genre_history key
//	genre_vote:<genreID>:<accountID>           -> domain.GenreRelevanceVote
//	account_permission:<accountID>:<perm>      -> empty
const (
	genreSeqKey        = "seq:genre"
	genreHistorySeqKey = "seq:genre_history"

	genrePrefix             = "genre:"
	genreTreePrefix         = "genre_tree:"
	genreHistoryPrefix      = "genre_history:"
	genreHistoryBySeqPrefix = "idx:genre_history:seq:"
	genreVotePrefix         = "genre_vote:"
	accountPermissionPrefix = "account_permission:"
)

func genreKey(id int) []byte {
	return fmt.Appendf(nil, "%s%010d", genrePrefix, id)
}

func genreTreeKey(id int) []byte {
	return fmt.Appendf(nil, "%s%010d", genreTreePrefix, id)
}

func genreHistoryGenrePrefix(genreID int) []byte {
	return fmt.Appendf(nil, "%s%010d:", genreHistoryPrefix, genreID)
}

func genreHistoryKey(genreID int, seq uint64) []byte {
	return fmt.Appendf(nil, "%s%010d:%020d", genreHistoryPrefix, genreID, seq)
}

func genreHistorySeqIndexKey(seq uint64) []byte {
	return fmt.Appendf(nil, "%s%020d", genreHistoryBySeqPrefix, seq)
}

func genreVoteGenrePrefix(genreID int) []byte {
	return fmt.Appendf(nil, "%s%010d:", genreVotePrefix, genreID)
}

func genreVoteKey(genreID, accountID int) []byte {
	return fmt.Appendf(nil, "%s%010d:%010d", genreVotePrefix, genreID, accountID)
}

func accountPermissionAccountPrefix(accountID int) []byte {
	return fmt.Appendf(nil, "%s%010d:", accountPermissionPrefix, accountID)
}

func accountPermissionKey(accountID int, p domain.Permission) []byte {
	return fmt.Appendf(nil, "%s%010d:%s", accountPermissionPrefix, accountID, p)
}
