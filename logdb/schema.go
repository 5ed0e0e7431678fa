// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// seq packs block number and event index, see sequence.
const eventTableSchema = `
create table if not exists event (
	seq integer primary key not null,
	blockTime integer not null,
	caller blob(20) not null,
	address blob(20) not null,
	name text not null,
	topic0 blob(20),
	topic1 blob(20),
	topic2 blob(20),
	topic3 blob(20),
	data blob
);

create index if not exists event_i0 on event(address);
create index if not exists event_i1 on event(name);
create index if not exists event_i2 on event(topic0);
create index if not exists event_i3 on event(topic1);
create index if not exists event_i4 on event(topic2);
create index if not exists event_i5 on event(topic3);
`
