// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages contract storage of the ledger.
// It follows the flow as bellow:
//
//	           o
//	           |
//	  [ revertable state ]
//	           |
//	    [ stacked map ] -> [ journal ] -> [ stage ] -> [ kv batch ]
//	           |
//	   [ direct cache ]
//	           |
//	     [ kv store ]
//
// Storage values are 32-byte words or rlp encoded blobs, keyed by
// contract address and slot.
package state
